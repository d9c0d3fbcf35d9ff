package middleware

import (
	"net/http"

	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

// RequireCapability rejects requests whose actor role lacks the capability.
func RequireCapability(capability enums.Capability, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.Role(RoleFromContext(r.Context()))
			if !role.HasCapability(capability) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "acesso negado"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects requests from non-admin actors.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.Role(RoleFromContext(r.Context()))
			if !role.IsAdmin() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "acesso negado"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
