package controllers

import (
	"net/http"
	"strings"

	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/api/validators"
	"github.com/acervohq/acervo-backend/internal/inventory"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

type createItemRequest struct {
	Name        string  `json:"nome" validate:"required"`
	Description *string `json:"descricao,omitempty"`
	Category    *string `json:"categoria,omitempty"`
	AssetCode   *string `json:"codigoPatrimonio,omitempty"`
	Condition   *string `json:"condicao,omitempty"`
	PhotoURL    *string `json:"foto,omitempty"`
	Location    *string `json:"localizacao,omitempty"`
	Tags        *string `json:"tags,omitempty"`
}

func parseCondition(raw *string) (*enums.ItemCondition, error) {
	if raw == nil {
		return nil, nil
	}
	condition, err := enums.ParseItemCondition(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "condição inválida")
	}
	return &condition, nil
}

func ItemCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		condition, err := parseCondition(payload.Condition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.CreateItem(r.Context(), inventory.CreateItemInput{
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			AssetCode:   payload.AssetCode,
			Condition:   condition,
			PhotoURL:    payload.PhotoURL,
			Location:    payload.Location,
			Tags:        payload.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func ItemGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

type updateItemRequest struct {
	Name        *string `json:"nome,omitempty"`
	Description *string `json:"descricao,omitempty"`
	Category    *string `json:"categoria,omitempty"`
	AssetCode   *string `json:"codigoPatrimonio,omitempty"`
	Condition   *string `json:"condicao,omitempty"`
	PhotoURL    *string `json:"foto,omitempty"`
	Location    *string `json:"localizacao,omitempty"`
	Tags        *string `json:"tags,omitempty"`
}

func ItemUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		condition, err := parseCondition(payload.Condition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateItem(r.Context(), id, inventory.UpdateItemInput{
			Name:        payload.Name,
			Description: payload.Description,
			Category:    payload.Category,
			AssetCode:   payload.AssetCode,
			Condition:   condition,
			PhotoURL:    payload.PhotoURL,
			Location:    payload.Location,
			Tags:        payload.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ItemDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "item removido"})
	}
}

func ItemList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := inventory.ItemFilter{
			Search:   strings.TrimSpace(q.Get("busca")),
			Category: strings.TrimSpace(q.Get("categoria")),
			Location: strings.TrimSpace(q.Get("localizacao")),
			Tag:      strings.TrimSpace(q.Get("tag")),
		}
		if raw := strings.TrimSpace(q.Get("condicao")); raw != "" {
			condition, err := enums.ParseItemCondition(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "condição inválida"))
				return
			}
			filter.Condition = &condition
		}
		available, err := validators.ParseQueryBool(r, "disponivel")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Available = available

		page := validators.PaginationFromRequest(r)
		items, total, err := svc.ListItems(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items, total, page)
	}
}

// ItemListAvailable returns only items free to borrow.
func ItemListAvailable(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := validators.PaginationFromRequest(r)
		items, total, err := svc.ListAvailableItems(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items, total, page)
	}
}
