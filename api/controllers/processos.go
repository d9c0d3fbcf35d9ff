package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/api/validators"
	"github.com/acervohq/acervo-backend/internal/processes"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

type openProcessRequest struct {
	LoanID      *string `json:"emprestimoId,omitempty"`
	UserID      string  `json:"usuarioId" validate:"required"`
	Type        string  `json:"tipo" validate:"required"`
	Description string  `json:"descricao" validate:"required"`
	FineCents   *int64  `json:"valorMulta,omitempty"`
	OccurredAt  *string `json:"dataOcorrencia,omitempty"`
	Notes       *string `json:"observacoes,omitempty"`
}

// ProcessOpen registers an administrative process for loss or damage.
func ProcessOpen(svc processes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload openProcessRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := uuid.Parse(strings.TrimSpace(payload.UserID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "usuário inválido"))
			return
		}
		processType, err := enums.ParseProcessType(strings.TrimSpace(payload.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "tipo de processo inválido"))
			return
		}

		input := processes.OpenCaseInput{
			UserID:      userID,
			Type:        processType,
			Description: payload.Description,
			FineCents:   payload.FineCents,
			Notes:       payload.Notes,
		}
		if payload.LoanID != nil {
			loanID, err := uuid.Parse(strings.TrimSpace(*payload.LoanID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "empréstimo inválido"))
				return
			}
			input.LoanID = &loanID
		}
		if payload.OccurredAt != nil {
			occurredAt, err := time.Parse(time.RFC3339, strings.TrimSpace(*payload.OccurredAt))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "data de ocorrência inválida"))
				return
			}
			input.OccurredAt = occurredAt
		}

		process, err := svc.OpenCase(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, process)
	}
}

func ProcessGet(svc processes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "processoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		process, err := svc.GetCase(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, process)
	}
}

type updateProcessRequest struct {
	Description *string `json:"descricao,omitempty"`
	FineCents   *int64  `json:"valorMulta,omitempty"`
	Notes       *string `json:"observacoes,omitempty"`
	InProgress  *bool   `json:"emAndamento,omitempty"`
}

func ProcessUpdate(svc processes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "processoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProcessRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		process, err := svc.UpdateCase(r.Context(), id, processes.UpdateCaseInput{
			Description: payload.Description,
			FineCents:   payload.FineCents,
			Notes:       payload.Notes,
			InProgress:  payload.InProgress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, process)
	}
}

func ProcessList(svc processes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var filter processes.ProcessFilter

		if raw := strings.TrimSpace(q.Get("usuarioId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "usuário inválido"))
				return
			}
			filter.UserID = &id
		}
		if raw := strings.TrimSpace(q.Get("emprestimoId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "empréstimo inválido"))
				return
			}
			filter.LoanID = &id
		}
		if raw := strings.TrimSpace(q.Get("tipo")); raw != "" {
			processType, err := enums.ParseProcessType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "tipo inválido"))
				return
			}
			filter.Type = &processType
		}
		if raw := strings.TrimSpace(q.Get("status")); raw != "" {
			status, err := enums.ParseProcessStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status inválido"))
				return
			}
			filter.Status = &status
		}

		page := validators.PaginationFromRequest(r)
		result, total, err := svc.ListCases(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result, total, page)
	}
}

func ProcessListOpen(svc processes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := validators.PaginationFromRequest(r)
		result, total, err := svc.ListOpenCases(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result, total, page)
	}
}

type resolveProcessRequest struct {
	Outcome   string `json:"resolucao" validate:"required"`
	FineCents *int64 `json:"valorMulta,omitempty"`
}

// ProcessResolve closes the case with a recorded outcome.
func ProcessResolve(svc processes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "processoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload resolveProcessRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		process, err := svc.ResolveCase(r.Context(), id, processes.ResolveCaseInput{
			Outcome:   payload.Outcome,
			FineCents: payload.FineCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, process)
	}
}

type referToJusticeRequest struct {
	Notes *string `json:"observacoes,omitempty"`
}

// ProcessReferToJustice escalates the case out of the institution.
func ProcessReferToJustice(svc processes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "processoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload referToJusticeRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		process, err := svc.ReferCaseToJustice(r.Context(), id, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, process)
	}
}
