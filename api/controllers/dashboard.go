package controllers

import (
	"net/http"

	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/internal/dashboard"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

// DashboardSummary returns the aggregate counters for the admin panel.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
