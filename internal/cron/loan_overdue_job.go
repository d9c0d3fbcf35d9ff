package cron

import (
	"context"
	"fmt"

	"github.com/acervohq/acervo-backend/pkg/logger"
)

type LoanOverdueJobParams struct {
	Logger *logger.Logger
	Loans  overdueReconciler
}

type overdueReconciler interface {
	ReconcileOverdue(ctx context.Context) (int64, error)
}

// NewLoanOverdueJob builds the job that flags approved active loans past
// their due date as overdue.
func NewLoanOverdueJob(params LoanOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Loans == nil {
		return nil, fmt.Errorf("loan service required")
	}
	return &loanOverdueJob{
		logg:  params.Logger,
		loans: params.Loans,
	}, nil
}

type loanOverdueJob struct {
	logg  *logger.Logger
	loans overdueReconciler
}

func (j *loanOverdueJob) Name() string { return "loan-overdue" }

func (j *loanOverdueJob) Run(ctx context.Context) error {
	flagged, err := j.loans.ReconcileOverdue(ctx)
	if err != nil {
		return fmt.Errorf("loan overdue reconcile: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "loans_flagged", flagged)
	j.logg.Info(logCtx, "loan overdue reconcile complete")
	return nil
}
