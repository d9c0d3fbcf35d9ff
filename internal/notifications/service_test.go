package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS notificacoes (
  id TEXT PRIMARY KEY,
  emprestimo_id TEXT NOT NULL,
  usuario_id TEXT NOT NULL,
  tipo TEXT NOT NULL,
  assunto TEXT NOT NULL,
  mensagem TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pendente',
  data_agendamento DATETIME NOT NULL,
  data_envio DATETIME,
  tentativas INTEGER NOT NULL DEFAULT 0,
  erro TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(ddl).Error)
	require.NoError(t, conn.Exec("DELETE FROM notificacoes").Error)
	return conn
}

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := setupNotificationsTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func scheduleInput(when time.Time) ScheduleInput {
	return ScheduleInput{
		LoanID:       uuid.New(),
		RecipientID:  uuid.New(),
		Channel:      enums.NotificationChannelEmail,
		Subject:      "Lembrete de devolução",
		Body:         "Seu empréstimo vence amanhã.",
		ScheduledFor: when,
	}
}

func TestSchedule(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Schedule(context.Background(), scheduleInput(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, enums.NotificationStatusPending, created.Status)
	assert.Equal(t, 0, created.Attempts)
	assert.Nil(t, created.SentAt)
}

func TestSchedule_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bad := scheduleInput(time.Now())
	bad.Channel = enums.NotificationChannel("pombo")
	_, err := svc.Schedule(ctx, bad)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	empty := scheduleInput(time.Now())
	empty.Subject = "  "
	_, err = svc.Schedule(ctx, empty)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	zero := scheduleInput(time.Time{})
	_, err = svc.Schedule(ctx, zero)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestListDuePending_SkipsFutureAndNonPending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	due, err := svc.Schedule(ctx, scheduleInput(time.Now().Add(-time.Hour)))
	require.NoError(t, err)
	_, err = svc.Schedule(ctx, scheduleInput(time.Now().Add(24*time.Hour)))
	require.NoError(t, err)

	sent, err := svc.Schedule(ctx, scheduleInput(time.Now().Add(-2*time.Hour)))
	require.NoError(t, err)
	_, err = svc.MarkSent(ctx, sent.ID)
	require.NoError(t, err)

	pending, err := svc.ListDuePending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, due.ID, pending[0].ID)
}

func TestMarkSentAndDoubleSendConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Schedule(ctx, scheduleInput(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	sent, err := svc.MarkSent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.NotificationStatusSent, sent.Status)
	assert.Equal(t, 1, sent.Attempts)
	require.NotNil(t, sent.SentAt)

	_, err = svc.MarkSent(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestMarkFailed_TracksAttemptsAndAllowsRetry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Schedule(ctx, scheduleInput(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	failed, err := svc.MarkFailed(ctx, created.ID, "smtp timeout")
	require.NoError(t, err)
	assert.Equal(t, enums.NotificationStatusFailed, failed.Status)
	assert.Equal(t, 1, failed.Attempts)
	require.NotNil(t, failed.LastError)
	assert.Equal(t, "smtp timeout", *failed.LastError)

	sent, err := svc.MarkSent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.NotificationStatusSent, sent.Status)
	assert.Equal(t, 2, sent.Attempts)
	assert.Nil(t, sent.LastError)
}

func TestDelete_RejectsSentNotification(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Schedule(ctx, scheduleInput(time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	_, err = svc.MarkSent(ctx, created.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestList_FiltersByStatusAndLoan(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.Schedule(ctx, scheduleInput(time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	_, err = svc.Schedule(ctx, scheduleInput(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	exists, err := repo.ExistsForLoanSubject(ctx, first.LoanID, first.Subject)
	require.NoError(t, err)
	assert.True(t, exists)

	pending := enums.NotificationStatusPending
	list, total, err := svc.List(ctx, NotificationFilter{LoanID: &first.LoanID, Status: &pending}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}
