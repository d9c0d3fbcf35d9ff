package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/acervohq/acervo-backend/pkg/logger"
)

// Summary is a snapshot of collection and loan activity for the admin panel.
type Summary struct {
	TotalItems           int64 `json:"total_itens"`
	AvailableItems       int64 `json:"itens_disponiveis"`
	TotalUsers           int64 `json:"total_usuarios"`
	ActiveLoans          int64 `json:"emprestimos_ativos"`
	PendingApprovals     int64 `json:"emprestimos_pendentes"`
	OverdueLoans         int64 `json:"emprestimos_atrasados"`
	OpenProcesses        int64 `json:"processos_abertos"`
	PendingNotifications int64 `json:"notificacoes_pendentes"`
}

// Service assembles the dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type counter interface {
	CountItems(ctx context.Context) (int64, error)
	CountAvailableItems(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountActiveLoans(ctx context.Context) (int64, error)
	CountPendingApprovals(ctx context.Context) (int64, error)
	CountOverdueLoans(ctx context.Context, today time.Time) (int64, error)
	CountOpenProcesses(ctx context.Context) (int64, error)
	CountPendingNotifications(ctx context.Context) (int64, error)
}

type service struct {
	repo counter
	logg *logger.Logger
	now  func() time.Time
}

// NewService constructs a dashboard service instance.
func NewService(repo counter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// Summary gathers every counter. A failing counter is logged and reported
// as zero so one broken query does not blank the whole panel.
func (s *service) Summary(ctx context.Context) (*Summary, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)

	summary := &Summary{}
	counters := []struct {
		name string
		dest *int64
		load func(ctx context.Context) (int64, error)
	}{
		{"total_items", &summary.TotalItems, s.repo.CountItems},
		{"available_items", &summary.AvailableItems, s.repo.CountAvailableItems},
		{"total_users", &summary.TotalUsers, s.repo.CountUsers},
		{"active_loans", &summary.ActiveLoans, s.repo.CountActiveLoans},
		{"pending_approvals", &summary.PendingApprovals, s.repo.CountPendingApprovals},
		{"overdue_loans", &summary.OverdueLoans, func(ctx context.Context) (int64, error) {
			return s.repo.CountOverdueLoans(ctx, today)
		}},
		{"open_processes", &summary.OpenProcesses, s.repo.CountOpenProcesses},
		{"pending_notifications", &summary.PendingNotifications, s.repo.CountPendingNotifications},
	}

	for _, c := range counters {
		value, err := c.load(ctx)
		if err != nil {
			s.logg.Error(s.logg.WithField(ctx, "counter", c.name), "dashboard counter failed", err)
			continue
		}
		*c.dest = value
	}

	return summary, nil
}
