package controllers

import (
	"net/http"
	"strings"

	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/api/validators"
	"github.com/acervohq/acervo-backend/internal/identity"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

func ProfessorGet(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "professorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		professor, err := svc.GetProfessor(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, professor)
	}
}

type updateProfessorRequest struct {
	Registration *string `json:"matricula,omitempty"`
	Department   *string `json:"departamento,omitempty"`
	Title        *string `json:"cargo,omitempty"`
	Active       *bool   `json:"ativo,omitempty"`
}

func ProfessorUpdate(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "professorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateProfessorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		professor, err := svc.UpdateProfessor(r.Context(), id, identity.UpdateProfessorInput{
			Registration: payload.Registration,
			Department:   payload.Department,
			Title:        payload.Title,
			Active:       payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, professor)
	}
}

func ProfessorList(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := identity.ProfessorFilter{
			Search:     strings.TrimSpace(r.URL.Query().Get("busca")),
			Department: strings.TrimSpace(r.URL.Query().Get("departamento")),
		}
		active, err := validators.ParseQueryBool(r, "ativo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Active = active

		page := validators.PaginationFromRequest(r)
		professors, total, err := svc.ListProfessors(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, professors, total, page)
	}
}
