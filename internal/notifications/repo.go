package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

// NotificationFilter narrows notification listings. Zero fields are ignored.
type NotificationFilter struct {
	LoanID      *uuid.UUID
	RecipientID *uuid.UUID
	Channel     *enums.NotificationChannel
	Status      *enums.NotificationStatus
}

var notificationSortColumns = map[string]string{
	"dataAgendamento": "data_agendamento",
	"status":          "status",
	"createdAt":       "created_at",
}

// Repository wires together notification persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new notification row.
func (r *Repository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

// FindByID loads a single notification.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// Update saves the full notification row.
func (r *Repository) Update(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Save(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

// Delete removes the notification row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id).Error
}

// List returns a page of notifications plus the total count.
func (r *Repository) List(ctx context.Context, filter NotificationFilter, page pagination.Params) ([]models.Notification, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Notification
	query := pagination.Apply(r.filtered(ctx, filter), page, "data_agendamento", notificationSortColumns)
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListDuePending returns pending notifications whose schedule time has passed.
func (r *Repository) ListDuePending(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []models.Notification
	err := r.db.WithContext(ctx).
		Where("status = ? AND data_agendamento <= ?", enums.NotificationStatusPending, now).
		Order("data_agendamento asc").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ExistsForLoanSubject reports whether the loan already has a notification
// with the given subject. Used to keep scheduled reminders idempotent.
func (r *Repository) ExistsForLoanSubject(ctx context.Context, loanID uuid.UUID, subject string) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("emprestimo_id = ? AND assunto = ?", loanID, subject).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *Repository) filtered(ctx context.Context, filter NotificationFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Notification{})

	if filter.LoanID != nil {
		query = query.Where("emprestimo_id = ?", *filter.LoanID)
	}
	if filter.RecipientID != nil {
		query = query.Where("usuario_id = ?", *filter.RecipientID)
	}
	if filter.Channel != nil {
		query = query.Where("tipo = ?", *filter.Channel)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}
