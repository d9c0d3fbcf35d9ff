package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/api/middleware"
	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/api/validators"
	"github.com/acervohq/acervo-backend/internal/loans"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

type createLoanRequest struct {
	ItemID          string  `json:"itemId" validate:"required"`
	StartDate       *string `json:"dataInicio,omitempty"`
	DueDate         string  `json:"dataDevolucaoPrevista" validate:"required"`
	TakenBy         *string `json:"pessoaQuePegou,omitempty"`
	TakenFromRoom   *string `json:"salaQuePegou,omitempty"`
	CurrentLocation *string `json:"localizacaoAtual,omitempty"`
	Notes           *string `json:"observacoes,omitempty"`
}

func actorID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "não autenticado")
	}
	return id, nil
}

func parseDate(raw, field string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "data inválida").
			WithDetails(map[string]any{"field": field})
	}
	return parsed, nil
}

// LoanCreate opens a loan for the authenticated requester.
func LoanCreate(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requesterID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload createLoanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuid.Parse(strings.TrimSpace(payload.ItemID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "item inválido"))
			return
		}
		dueDate, err := parseDate(payload.DueDate, "dataDevolucaoPrevista")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := loans.CreateLoanInput{
			ItemID:          itemID,
			DueDate:         dueDate,
			TakenBy:         payload.TakenBy,
			TakenFromRoom:   payload.TakenFromRoom,
			CurrentLocation: payload.CurrentLocation,
			Notes:           payload.Notes,
		}
		if payload.StartDate != nil {
			startDate, err := parseDate(*payload.StartDate, "dataInicio")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.StartDate = &startDate
		}

		loan, err := svc.CreateLoan(r.Context(), requesterID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, loan)
	}
}

func LoanGet(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "emprestimoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loan, err := svc.GetLoan(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

func LoanList(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := loans.LoanFilter{Search: strings.TrimSpace(q.Get("busca"))}

		if raw := strings.TrimSpace(q.Get("usuarioId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "usuário inválido"))
				return
			}
			filter.RequesterID = &id
		}
		if raw := strings.TrimSpace(q.Get("itemId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "item inválido"))
				return
			}
			filter.ItemID = &id
		}
		if raw := strings.TrimSpace(q.Get("status")); raw != "" {
			status, err := enums.ParseLoanStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status inválido"))
				return
			}
			filter.Status = &status
		}
		if raw := strings.TrimSpace(q.Get("statusAprovacao")); raw != "" {
			status, err := enums.ParseApprovalStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status de aprovação inválido"))
				return
			}
			filter.ApprovalStatus = &status
		}
		if raw := strings.TrimSpace(q.Get("vencimentoDe")); raw != "" {
			from, err := parseDate(raw, "vencimentoDe")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.DueAfter = &from
		}
		if raw := strings.TrimSpace(q.Get("vencimentoAte")); raw != "" {
			until, err := parseDate(raw, "vencimentoAte")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filter.DueBefore = &until
		}

		page := validators.PaginationFromRequest(r)
		result, total, err := svc.ListLoans(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result, total, page)
	}
}

// LoanApprove records the actor's approval decision.
func LoanApprove(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loanID, err := validators.UUIDParam(r, "emprestimoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		approverID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loan, err := svc.ApproveLoan(r.Context(), loanID, approverID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

type rejectLoanRequest struct {
	Reason *string `json:"motivo,omitempty"`
}

// LoanReject denies a pending loan with an optional reason.
func LoanReject(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loanID, err := validators.UUIDParam(r, "emprestimoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		approverID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload rejectLoanRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		loan, err := svc.RejectLoan(r.Context(), loanID, approverID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

type returnLoanRequest struct {
	Condition *string `json:"condicao,omitempty"`
	Location  *string `json:"localizacao,omitempty"`
	Notes     *string `json:"observacoes,omitempty"`
}

// LoanReturn closes the loan and releases the item.
func LoanReturn(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loanID, err := validators.UUIDParam(r, "emprestimoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload returnLoanRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		condition, err := parseCondition(payload.Condition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loan, err := svc.ReturnLoan(r.Context(), loanID, loans.ReturnLoanInput{
			Condition: condition,
			Location:  payload.Location,
			Notes:     payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

func LoanCancel(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loanID, err := validators.UUIDParam(r, "emprestimoId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		loan, err := svc.CancelLoan(r.Context(), loanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loan)
	}
}

func LoanListOverdue(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := validators.PaginationFromRequest(r)
		result, total, err := svc.ListOverdueLoans(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result, total, page)
	}
}

func LoanListPending(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := validators.PaginationFromRequest(r)
		result, total, err := svc.ListPendingLoans(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result, total, page)
	}
}

// LoanListUpcoming lists approved active loans due within the next days.
func LoanListUpcoming(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		daysAhead, err := validators.ParseQueryInt(r, "dias", 7, 1, 90)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page := validators.PaginationFromRequest(r)
		result, total, err := svc.ListUpcomingLoans(r.Context(), daysAhead, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result, total, page)
	}
}
