package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

// Service exposes notification scheduling and dispatch bookkeeping.
type Service interface {
	Schedule(ctx context.Context, input ScheduleInput) (*models.Notification, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, filter NotificationFilter, page pagination.Params) ([]models.Notification, int64, error)
	ListDuePending(ctx context.Context, limit int) ([]models.Notification, error)
	Delete(ctx context.Context, id uuid.UUID) error

	MarkSent(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) (*models.Notification, error)
}

// ScheduleInput holds the validated payload to schedule a notification.
type ScheduleInput struct {
	LoanID       uuid.UUID
	RecipientID  uuid.UUID
	Channel      enums.NotificationChannel
	Subject      string
	Body         string
	ScheduledFor time.Time
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a notification service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Schedule stores a pending notification for later dispatch.
func (s *service) Schedule(ctx context.Context, input ScheduleInput) (*models.Notification, error) {
	if !input.Channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tipo de notificação inválido")
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assunto é obrigatório")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mensagem é obrigatória")
	}
	if input.ScheduledFor.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "data de agendamento é obrigatória")
	}

	notification := &models.Notification{
		LoanID:       input.LoanID,
		RecipientID:  input.RecipientID,
		Channel:      input.Channel,
		Subject:      subject,
		Body:         body,
		Status:       enums.NotificationStatusPending,
		ScheduledFor: input.ScheduledFor,
	}

	created, err := s.repo.Create(ctx, notification)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert notification")
	}
	return created, nil
}

// Get loads a single notification by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notificação não encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load notification")
	}
	return notification, nil
}

// List returns a filtered page of notifications with the total count.
func (s *service) List(ctx context.Context, filter NotificationFilter, page pagination.Params) ([]models.Notification, int64, error) {
	list, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list notifications")
	}
	return list, total, nil
}

// ListDuePending returns pending notifications ready to be dispatched.
func (s *service) ListDuePending(ctx context.Context, limit int) ([]models.Notification, error) {
	list, err := s.repo.ListDuePending(ctx, s.now(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list due notifications")
	}
	return list, nil
}

// Delete removes a notification that has not been sent yet.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	notification, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if notification.Status == enums.NotificationStatusSent {
		return pkgerrors.New(pkgerrors.CodeConflict, "notificação já foi enviada")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete notification")
	}
	return nil
}

// MarkSent records a successful dispatch.
func (s *service) MarkSent(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	notification, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.Status == enums.NotificationStatusSent {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "notificação já foi enviada")
	}

	sentAt := s.now()
	notification.Status = enums.NotificationStatusSent
	notification.SentAt = &sentAt
	notification.Attempts++
	notification.LastError = nil

	updated, err := s.repo.Update(ctx, notification)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update notification")
	}
	return updated, nil
}

// MarkFailed records a dispatch failure and bumps the attempt counter.
func (s *service) MarkFailed(ctx context.Context, id uuid.UUID, cause string) (*models.Notification, error) {
	notification, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.Status == enums.NotificationStatusSent {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "notificação já foi enviada")
	}

	notification.Status = enums.NotificationStatusFailed
	notification.Attempts++
	trimmed := strings.TrimSpace(cause)
	if trimmed != "" {
		notification.LastError = &trimmed
	}

	updated, err := s.repo.Update(ctx, notification)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update notification")
	}
	return updated, nil
}
