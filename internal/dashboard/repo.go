package dashboard

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
)

// Repository answers the aggregate count queries behind the dashboard.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountItems(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Item{}).Count(&total).Error
	return total, err
}

func (r *Repository) CountAvailableItems(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("disponivel = ?", true).
		Count(&total).Error
	return total, err
}

func (r *Repository) CountActiveLoans(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status IN ?", []enums.LoanStatus{enums.LoanStatusActive, enums.LoanStatusOverdue}).
		Count(&total).Error
	return total, err
}

func (r *Repository) CountPendingApprovals(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status_aprovacao = ?", enums.ApprovalStatusPending).
		Count(&total).Error
	return total, err
}

// CountOverdueLoans counts loans still out past their due date, including
// rows the overdue reconciliation job has not touched yet.
func (r *Repository) CountOverdueLoans(ctx context.Context, today time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status IN ?", []enums.LoanStatus{enums.LoanStatusActive, enums.LoanStatusOverdue}).
		Where("data_devolucao_prevista < ?", today).
		Count(&total).Error
	return total, err
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error
	return total, err
}

func (r *Repository) CountOpenProcesses(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.AdministrativeProcess{}).
		Where("status IN ?", []enums.ProcessStatus{enums.ProcessStatusOpen, enums.ProcessStatusInProgress}).
		Count(&total).Error
	return total, err
}

func (r *Repository) CountPendingNotifications(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("status = ?", enums.NotificationStatusPending).
		Count(&total).Error
	return total, err
}
