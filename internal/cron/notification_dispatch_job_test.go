package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

type fakeDispatchStore struct {
	due    []models.Notification
	sent   []uuid.UUID
	failed map[uuid.UUID]string
}

func (f *fakeDispatchStore) ListDuePending(context.Context, int) ([]models.Notification, error) {
	return f.due, nil
}

func (f *fakeDispatchStore) MarkSent(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	f.sent = append(f.sent, id)
	return &models.Notification{ID: id}, nil
}

func (f *fakeDispatchStore) MarkFailed(_ context.Context, id uuid.UUID, cause string) (*models.Notification, error) {
	if f.failed == nil {
		f.failed = make(map[uuid.UUID]string)
	}
	f.failed[id] = cause
	return &models.Notification{ID: id}, nil
}

type fakeSender struct {
	failFor map[uuid.UUID]error
	seen    []uuid.UUID
}

func (f *fakeSender) Send(_ context.Context, notification *models.Notification) error {
	f.seen = append(f.seen, notification.ID)
	return f.failFor[notification.ID]
}

func newDispatchJob(t *testing.T, store *fakeDispatchStore, sender *fakeSender, maxAttempts int) Job {
	t.Helper()
	job, err := NewNotificationDispatchJob(NotificationDispatchJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		Notifications: store,
		Sender:        sender,
		MaxAttempts:   maxAttempts,
	})
	if err != nil {
		t.Fatalf("NewNotificationDispatchJob: %v", err)
	}
	return job
}

func TestNotificationDispatchJobMarksOutcomes(t *testing.T) {
	good := models.Notification{ID: uuid.New()}
	bad := models.Notification{ID: uuid.New()}
	store := &fakeDispatchStore{due: []models.Notification{good, bad}}
	sender := &fakeSender{failFor: map[uuid.UUID]error{bad.ID: errors.New("smtp down")}}
	job := newDispatchJob(t, store, sender, 3)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.sent) != 1 || store.sent[0] != good.ID {
		t.Fatalf("expected %s marked sent, got %v", good.ID, store.sent)
	}
	if store.failed[bad.ID] != "smtp down" {
		t.Fatalf("expected failure cause recorded, got %q", store.failed[bad.ID])
	}
}

func TestNotificationDispatchJobSkipsExhaustedAttempts(t *testing.T) {
	exhausted := models.Notification{ID: uuid.New(), Attempts: 3}
	store := &fakeDispatchStore{due: []models.Notification{exhausted}}
	sender := &fakeSender{}
	job := newDispatchJob(t, store, sender, 3)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sender.seen) != 0 {
		t.Fatalf("expected no send attempts, got %d", len(sender.seen))
	}
	if len(store.sent) != 0 || len(store.failed) != 0 {
		t.Fatal("expected no outcome updates for exhausted notification")
	}
}
