package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acervohq/acervo-backend/api/controllers"
	"github.com/acervohq/acervo-backend/api/middleware"
	"github.com/acervohq/acervo-backend/internal/dashboard"
	"github.com/acervohq/acervo-backend/internal/identity"
	"github.com/acervohq/acervo-backend/internal/inventory"
	"github.com/acervohq/acervo-backend/internal/loans"
	"github.com/acervohq/acervo-backend/internal/notifications"
	"github.com/acervohq/acervo-backend/internal/processes"
	"github.com/acervohq/acervo-backend/pkg/auth/session"
	"github.com/acervohq/acervo-backend/pkg/config"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Identity      identity.Service
	Inventory     inventory.Service
	Loans         loans.Service
	Notifications notifications.Service
	Processes     processes.Service
	Dashboard     dashboard.Service
}

type sessionManager interface {
	session.Checker
	Create(ctx context.Context, sessionID, userID string) error
	Revoke(ctx context.Context, sessionID string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger, redisPinger pinger,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisPinger))
	})

	uploadDir := http.Dir(cfg.Upload.Dir)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadDir)))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AuthLogin(svcs.Identity, sessions, cfg.Session, logg))
		r.Post("/usuarios", controllers.UserCreate(svcs.Identity, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Session, sessions, logg))

			r.Post("/auth/logout", controllers.AuthLogout(sessions, cfg.Session, logg))
			r.Get("/auth/me", controllers.AuthMe(svcs.Identity, logg))

			r.Post("/uploads", controllers.UploadPhoto(cfg.Upload, logg))

			r.Route("/usuarios", func(r chi.Router) {
				r.Get("/{usuarioId}", controllers.UserGet(svcs.Identity, logg))
				r.Put("/{usuarioId}", controllers.UserUpdate(svcs.Identity, logg))
				r.Post("/{usuarioId}/solicitar-professor", controllers.UserRequestProfessor(svcs.Identity, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(enums.CapabilityManageUsers, logg))
					r.Get("/", controllers.UserList(svcs.Identity, logg))
					r.Delete("/{usuarioId}", controllers.UserDelete(svcs.Identity, logg))
					r.Post("/{usuarioId}/aprovar-professor", controllers.UserApproveProfessor(svcs.Identity, logg))
					r.Post("/{usuarioId}/rejeitar-professor", controllers.UserRejectProfessor(svcs.Identity, logg))
				})
			})

			r.Route("/professores", func(r chi.Router) {
				r.Get("/", controllers.ProfessorList(svcs.Identity, logg))
				r.Get("/{professorId}", controllers.ProfessorGet(svcs.Identity, logg))
				r.With(middleware.RequireCapability(enums.CapabilityManageUsers, logg)).
					Put("/{professorId}", controllers.ProfessorUpdate(svcs.Identity, logg))
			})

			r.Route("/itens", func(r chi.Router) {
				r.Get("/", controllers.ItemList(svcs.Inventory, logg))
				r.Get("/disponiveis", controllers.ItemListAvailable(svcs.Inventory, logg))
				r.Get("/{itemId}", controllers.ItemGet(svcs.Inventory, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(enums.CapabilityManageItems, logg))
					r.Post("/", controllers.ItemCreate(svcs.Inventory, logg))
					r.Put("/{itemId}", controllers.ItemUpdate(svcs.Inventory, logg))
					r.Delete("/{itemId}", controllers.ItemDelete(svcs.Inventory, logg))
				})
			})

			r.Route("/emprestimos", func(r chi.Router) {
				r.Post("/", controllers.LoanCreate(svcs.Loans, logg))
				r.Get("/", controllers.LoanList(svcs.Loans, logg))
				r.Get("/atrasados", controllers.LoanListOverdue(svcs.Loans, logg))
				r.Get("/pendentes", controllers.LoanListPending(svcs.Loans, logg))
				r.Get("/proximos-vencer", controllers.LoanListUpcoming(svcs.Loans, logg))
				r.Get("/{emprestimoId}", controllers.LoanGet(svcs.Loans, logg))
				r.Post("/{emprestimoId}/devolver", controllers.LoanReturn(svcs.Loans, logg))
				r.Post("/{emprestimoId}/cancelar", controllers.LoanCancel(svcs.Loans, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(enums.CapabilityApproveLoans, logg))
					r.Post("/{emprestimoId}/aprovar", controllers.LoanApprove(svcs.Loans, logg))
					r.Post("/{emprestimoId}/rejeitar", controllers.LoanReject(svcs.Loans, logg))
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))

				r.Get("/dashboard", controllers.DashboardSummary(svcs.Dashboard, logg))

				r.Route("/notificacoes", func(r chi.Router) {
					r.Get("/", controllers.NotificationList(svcs.Notifications, logg))
					r.Get("/pendentes", controllers.NotificationListPending(svcs.Notifications, logg))
					r.Get("/{notificacaoId}", controllers.NotificationGet(svcs.Notifications, logg))
					r.Delete("/{notificacaoId}", controllers.NotificationDelete(svcs.Notifications, logg))
				})

				r.Route("/processos-administrativos", func(r chi.Router) {
					r.Post("/", controllers.ProcessOpen(svcs.Processes, logg))
					r.Get("/", controllers.ProcessList(svcs.Processes, logg))
					r.Get("/abertos", controllers.ProcessListOpen(svcs.Processes, logg))
					r.Get("/{processoId}", controllers.ProcessGet(svcs.Processes, logg))
					r.Put("/{processoId}", controllers.ProcessUpdate(svcs.Processes, logg))
					r.Post("/{processoId}/resolver", controllers.ProcessResolve(svcs.Processes, logg))
					r.Post("/{processoId}/encaminhar-justica", controllers.ProcessReferToJustice(svcs.Processes, logg))
				})
			})
		})
	})

	return r
}
