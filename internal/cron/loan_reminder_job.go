package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/acervohq/acervo-backend/internal/notifications"
	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/logger"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

const (
	reminderSubject = "Lembrete de devolução"
	overdueSubject  = "Empréstimo em atraso"
)

type LoanReminderJobParams struct {
	Logger        *logger.Logger
	Loans         upcomingLoanLister
	Notifications reminderScheduler
	Existing      reminderChecker
	DaysAhead     int
}

type upcomingLoanLister interface {
	ListUpcomingLoans(ctx context.Context, daysAhead int, page pagination.Params) ([]models.Loan, int64, error)
	ListOverdueLoans(ctx context.Context, page pagination.Params) ([]models.Loan, int64, error)
}

type reminderScheduler interface {
	Schedule(ctx context.Context, input notifications.ScheduleInput) (*models.Notification, error)
}

type reminderChecker interface {
	ExistsForLoanSubject(ctx context.Context, loanID uuid.UUID, subject string) (bool, error)
}

// NewLoanReminderJob builds the job that schedules return reminders for
// loans coming due and overdue notices for loans past due. Subjects are
// fixed per kind so reruns never schedule the same message twice.
func NewLoanReminderJob(params LoanReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Loans == nil {
		return nil, fmt.Errorf("loan service required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notification service required")
	}
	if params.Existing == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	daysAhead := params.DaysAhead
	if daysAhead <= 0 {
		daysAhead = 1
	}
	return &loanReminderJob{
		logg:      params.Logger,
		loans:     params.Loans,
		scheduler: params.Notifications,
		existing:  params.Existing,
		daysAhead: daysAhead,
		now:       time.Now,
	}, nil
}

type loanReminderJob struct {
	logg      *logger.Logger
	loans     upcomingLoanLister
	scheduler reminderScheduler
	existing  reminderChecker
	daysAhead int
	now       func() time.Time
}

func (j *loanReminderJob) Name() string { return "loan-reminder" }

func (j *loanReminderJob) Run(ctx context.Context) error {
	var scheduled int
	var errs error

	upcoming, err := j.schedulePass(ctx, j.listUpcoming, reminderSubject, dueSoonBody)
	scheduled += upcoming.scheduled
	errs = multierr.Append(errs, upcoming.errs)
	if err != nil {
		return multierr.Append(errs, err)
	}

	overdue, err := j.schedulePass(ctx, j.loans.ListOverdueLoans, overdueSubject, overdueBody)
	scheduled += overdue.scheduled
	errs = multierr.Append(errs, overdue.errs)
	if err != nil {
		return multierr.Append(errs, err)
	}

	logCtx := j.logg.WithField(ctx, "reminders_scheduled", scheduled)
	j.logg.Info(logCtx, "loan reminder run complete")
	return errs
}

func (j *loanReminderJob) listUpcoming(ctx context.Context, page pagination.Params) ([]models.Loan, int64, error) {
	return j.loans.ListUpcomingLoans(ctx, j.daysAhead, page)
}

type passResult struct {
	scheduled int
	errs      error
}

func (j *loanReminderJob) schedulePass(
	ctx context.Context,
	list func(ctx context.Context, page pagination.Params) ([]models.Loan, int64, error),
	subject string,
	body func(loan *models.Loan) string,
) (passResult, error) {
	page := pagination.Params{Limit: pagination.MaxLimit}
	var result passResult

	for {
		loans, _, err := list(ctx, page)
		if err != nil {
			return result, fmt.Errorf("list loans for %q: %w", subject, err)
		}
		for i := range loans {
			created, err := j.remind(ctx, &loans[i], subject, body(&loans[i]))
			if err != nil {
				result.errs = multierr.Append(result.errs, fmt.Errorf("loan %s: %w", loans[i].ID, err))
				continue
			}
			if created {
				result.scheduled++
			}
		}
		if len(loans) < page.Limit {
			break
		}
		page.Offset += page.Limit
	}
	return result, nil
}

func loanItemName(loan *models.Loan) string {
	if loan.Item != nil {
		return loan.Item.Name
	}
	return "o item emprestado"
}

func dueSoonBody(loan *models.Loan) string {
	return fmt.Sprintf(
		"O empréstimo de %s vence em %s. Lembre-se de devolvê-lo no prazo.",
		loanItemName(loan), loan.DueDate.Format("02/01/2006"),
	)
}

func overdueBody(loan *models.Loan) string {
	return fmt.Sprintf(
		"O empréstimo de %s venceu em %s e ainda não foi devolvido. Regularize a devolução.",
		loanItemName(loan), loan.DueDate.Format("02/01/2006"),
	)
}

func (j *loanReminderJob) remind(ctx context.Context, loan *models.Loan, subject, body string) (bool, error) {
	exists, err := j.existing.ExistsForLoanSubject(ctx, loan.ID, subject)
	if err != nil {
		return false, fmt.Errorf("check existing reminder: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = j.scheduler.Schedule(ctx, notifications.ScheduleInput{
		LoanID:       loan.ID,
		RecipientID:  loan.RequesterID,
		Channel:      enums.NotificationChannelEmail,
		Subject:      subject,
		Body:         body,
		ScheduledFor: j.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("schedule reminder: %w", err)
	}
	return true, nil
}
