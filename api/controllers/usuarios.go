package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/api/validators"
	"github.com/acervohq/acervo-backend/internal/identity"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

type createUserRequest struct {
	CPF       string  `json:"cpf" validate:"required"`
	RG        string  `json:"rg" validate:"required"`
	FullName  string  `json:"nomeCompleto" validate:"required"`
	BirthDate string  `json:"dataNascimento" validate:"required"`
	Password  string  `json:"senha" validate:"required,min=8"`
	Role      *string `json:"role,omitempty"`
	PhotoURL  *string `json:"fotoPerfil,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"telefone,omitempty"`
	WhatsApp  *string `json:"whatsapp,omitempty"`
	Address   *string `json:"endereco,omitempty"`
}

func (r createUserRequest) toInput() (identity.CreateUserInput, error) {
	birthDate, err := time.Parse(dateLayout, strings.TrimSpace(r.BirthDate))
	if err != nil {
		return identity.CreateUserInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "data de nascimento inválida")
	}
	input := identity.CreateUserInput{
		CPF:       r.CPF,
		RG:        r.RG,
		FullName:  r.FullName,
		BirthDate: birthDate,
		Password:  r.Password,
		PhotoURL:  r.PhotoURL,
		Email:     r.Email,
		Phone:     r.Phone,
		WhatsApp:  r.WhatsApp,
		Address:   r.Address,
	}
	if r.Role != nil {
		role, err := enums.ParseRole(strings.TrimSpace(*r.Role))
		if err != nil {
			return identity.CreateUserInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "role inválida")
		}
		input.Role = &role
	}
	return input, nil
}

// UserCreate handles public registration.
func UserCreate(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.CreateUser(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

func UserGet(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "usuarioId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

type updateUserRequest struct {
	FullName *string `json:"nomeCompleto,omitempty"`
	PhotoURL *string `json:"fotoPerfil,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"telefone,omitempty"`
	WhatsApp *string `json:"whatsapp,omitempty"`
	Address  *string `json:"endereco,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"senha,omitempty" validate:"omitempty,min=8"`
}

func UserUpdate(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "usuarioId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := identity.UpdateUserInput{
			FullName: payload.FullName,
			PhotoURL: payload.PhotoURL,
			Email:    payload.Email,
			Phone:    payload.Phone,
			WhatsApp: payload.WhatsApp,
			Address:  payload.Address,
			Password: payload.Password,
		}
		if payload.Role != nil {
			role, err := enums.ParseRole(strings.TrimSpace(*payload.Role))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "role inválida"))
				return
			}
			input.Role = &role
		}
		user, err := svc.UpdateUser(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func UserDelete(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "usuarioId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteUser(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "usuário removido"})
	}
}

func UserList(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := identity.UserFilter{Search: strings.TrimSpace(r.URL.Query().Get("busca"))}
		if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
			role, err := enums.ParseRole(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "role inválida"))
				return
			}
			filter.Role = &role
		}
		requested, err := validators.ParseQueryBool(r, "solicitacaoProfessor")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.ProfessorRequested = requested

		page := validators.PaginationFromRequest(r)
		users, total, err := svc.ListUsers(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, users, total, page)
	}
}

// UserRequestProfessor flags the authenticated workflow target for upgrade.
func UserRequestProfessor(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "usuarioId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.RequestProfessorUpgrade(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

type approveProfessorRequest struct {
	Registration string  `json:"matricula" validate:"required"`
	Department   *string `json:"departamento,omitempty"`
	Title        *string `json:"cargo,omitempty"`
}

func UserApproveProfessor(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "usuarioId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload approveProfessorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		professor, err := svc.ApproveProfessorUpgrade(r.Context(), id, identity.ApproveProfessorInput{
			Registration: payload.Registration,
			Department:   payload.Department,
			Title:        payload.Title,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, professor)
	}
}

func UserRejectProfessor(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.UUIDParam(r, "usuarioId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.RejectProfessorUpgrade(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
