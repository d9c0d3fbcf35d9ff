package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/api/middleware"
	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/api/validators"
	"github.com/acervohq/acervo-backend/internal/identity"
	pkgauth "github.com/acervohq/acervo-backend/pkg/auth"
	"github.com/acervohq/acervo-backend/pkg/config"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

type sessionWriter interface {
	Create(ctx context.Context, sessionID, userID string) error
	Revoke(ctx context.Context, sessionID string) error
}

type loginRequest struct {
	CPF      string `json:"cpf" validate:"required"`
	Password string `json:"senha" validate:"required"`
}

// AuthLogin authenticates by CPF and password, opens a Redis session and
// returns the session token. The token is also set as a cookie so browser
// clients need no extra handling.
func AuthLogin(svc identity.Service, sessions sessionWriter, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Authenticate(r.Context(), payload.CPF, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		jti := uuid.NewString()
		if err := sessions.Create(r.Context(), jti, user.ID.String()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session"))
			return
		}

		token, err := pkgauth.MintSessionToken(cfg, time.Now(), pkgauth.SessionTokenPayload{
			UserID: user.ID,
			Role:   user.Role,
			JTI:    jti,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}

		setSessionCookie(w, cfg, token)
		responses.WriteSuccess(w, map[string]any{
			"token":   token,
			"usuario": user,
		})
	}
}

// AuthLogout revokes the current session and clears the cookie.
func AuthLogout(sessions sessionWriter, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID != "" {
			if err := sessions.Revoke(r.Context(), sessionID); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
				return
			}
		}
		clearSessionCookie(w, cfg)
		responses.WriteSuccess(w, map[string]string{"status": "sessão encerrada"})
	}
}

// AuthMe returns the authenticated user's profile.
func AuthMe(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "não autenticado"))
			return
		}
		user, err := svc.GetUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.SessionConfig, token string) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cfg.ExpirationMinutes * 60,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.SessionConfig) {
	if cfg.CookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
