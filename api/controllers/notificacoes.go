package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/api/validators"
	"github.com/acervohq/acervo-backend/internal/notifications"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

func NotificationGet(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "notificacaoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notification, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, notification)
	}
}

func NotificationList(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var filter notifications.NotificationFilter

		if raw := strings.TrimSpace(q.Get("emprestimoId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "empréstimo inválido"))
				return
			}
			filter.LoanID = &id
		}
		if raw := strings.TrimSpace(q.Get("usuarioId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "usuário inválido"))
				return
			}
			filter.RecipientID = &id
		}
		if raw := strings.TrimSpace(q.Get("tipo")); raw != "" {
			channel, err := enums.ParseNotificationChannel(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "tipo inválido"))
				return
			}
			filter.Channel = &channel
		}
		if raw := strings.TrimSpace(q.Get("status")); raw != "" {
			status, err := enums.ParseNotificationStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status inválido"))
				return
			}
			filter.Status = &status
		}

		page := validators.PaginationFromRequest(r)
		result, total, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result, total, page)
	}
}

// NotificationListPending returns due pending notifications, oldest first.
func NotificationListPending(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListDuePending(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func NotificationDelete(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "notificacaoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "notificação removida"})
	}
}
