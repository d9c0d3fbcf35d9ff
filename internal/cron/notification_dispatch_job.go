package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/acervohq/acervo-backend/internal/notifications"
	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

const defaultDispatchBatchSize = 100

type NotificationDispatchJobParams struct {
	Logger        *logger.Logger
	Notifications dispatchStore
	Sender        notifications.Sender
	MaxAttempts   int
	BatchSize     int
}

type dispatchStore interface {
	ListDuePending(ctx context.Context, limit int) ([]models.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) (*models.Notification, error)
}

// NewNotificationDispatchJob builds the job that delivers due pending
// notifications and records the outcome of each attempt.
func NewNotificationDispatchJob(params NotificationDispatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notification service required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultDispatchBatchSize
	}
	return &notificationDispatchJob{
		logg:        params.Logger,
		store:       params.Notifications,
		sender:      params.Sender,
		maxAttempts: maxAttempts,
		batchSize:   batchSize,
	}, nil
}

type notificationDispatchJob struct {
	logg        *logger.Logger
	store       dispatchStore
	sender      notifications.Sender
	maxAttempts int
	batchSize   int
}

func (j *notificationDispatchJob) Name() string { return "notification-dispatch" }

func (j *notificationDispatchJob) Run(ctx context.Context) error {
	due, err := j.store.ListDuePending(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("list due notifications: %w", err)
	}

	var sent, failed, skipped int
	var errs error
	for i := range due {
		notification := &due[i]
		if notification.Attempts >= j.maxAttempts {
			skipped++
			continue
		}
		if sendErr := j.sender.Send(ctx, notification); sendErr != nil {
			failed++
			if _, markErr := j.store.MarkFailed(ctx, notification.ID, sendErr.Error()); markErr != nil {
				errs = multierr.Append(errs, fmt.Errorf("mark failed %s: %w", notification.ID, markErr))
			}
			continue
		}
		if _, markErr := j.store.MarkSent(ctx, notification.ID); markErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark sent %s: %w", notification.ID, markErr))
			continue
		}
		sent++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sent":    sent,
		"failed":  failed,
		"skipped": skipped,
	})
	j.logg.Info(logCtx, "notification dispatch complete")
	return errs
}
