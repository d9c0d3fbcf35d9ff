package loans

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/internal/identity"
	"github.com/acervohq/acervo-backend/internal/inventory"
	"github.com/acervohq/acervo-backend/pkg/db"
	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := setupLoansTestDB(t)
	svc, err := NewService(
		NewRepository(conn),
		inventory.NewRepository(conn),
		identity.NewRepository(conn),
		db.NewFromGorm(conn),
	)
	require.NoError(t, err)
	return svc, conn
}

func dueIn(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}

func TestCreateLoan_StudentStartsPendingItemStaysAvailable(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)

	assert.Equal(t, enums.ApprovalStatusPending, loan.ApprovalStatus)
	assert.Equal(t, enums.LoanStatusActive, loan.Status)
	assert.Nil(t, loan.ProfessorAuthorizerID)
	assert.Nil(t, loan.AdminApproverID)

	// the item is only claimed once the loan is approved
	var fresh models.Item
	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.True(t, fresh.Available)
}

func TestCreateLoan_UnavailableItemConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	item := seedLoanItem(t, conn, false)

	_, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCreateLoan_ProfessorIsAutoApproved(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	professor := seedLoanUser(t, conn, enums.RoleProfessor)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, professor.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(3)})
	require.NoError(t, err)

	assert.Equal(t, enums.ApprovalStatusApproved, loan.ApprovalStatus)
	require.NotNil(t, loan.ProfessorAuthorizerID)
	assert.Equal(t, professor.ID, *loan.ProfessorAuthorizerID)
	assert.Nil(t, loan.AdminApproverID)

	// auto-approval claims the item together with the insert
	var fresh models.Item
	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.False(t, fresh.Available)
}

func TestCreateLoan_AdminApproverColumn(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	admin := seedLoanUser(t, conn, enums.RoleAdmin)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, admin.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(3)})
	require.NoError(t, err)

	assert.Equal(t, enums.ApprovalStatusApproved, loan.ApprovalStatus)
	require.NotNil(t, loan.AdminApproverID)
	assert.Equal(t, admin.ID, *loan.AdminApproverID)
	assert.Nil(t, loan.ProfessorAuthorizerID)
}

func TestCreateLoan_EnforcesActiveLimit(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	for i := 0; i < MaxActiveLoans; i++ {
		item := seedLoanItem(t, conn, true)
		_, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
		require.NoError(t, err)
	}

	extra := seedLoanItem(t, conn, true)
	_, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: extra.ID, DueDate: dueIn(7)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCreateLoan_DueDateBeforeStartRejected(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	item := seedLoanItem(t, conn, true)

	_, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(-2)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestApproveLoan(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	professor := seedLoanUser(t, conn, enums.RoleProfessor)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)

	approved, err := svc.ApproveLoan(ctx, loan.ID, professor.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusApproved, approved.ApprovalStatus)
	require.NotNil(t, approved.ProfessorAuthorizerID)
	assert.Equal(t, professor.ID, *approved.ProfessorAuthorizerID)

	// approval claims the item
	var fresh models.Item
	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.False(t, fresh.Available)

	_, err = svc.ApproveLoan(ctx, loan.ID, professor.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.False(t, fresh.Available)
}

func TestApproveLoan_ItemAlreadyClaimedConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	first := seedLoanUser(t, conn, enums.RoleStudent)
	second := seedLoanUser(t, conn, enums.RoleStudent)
	admin := seedLoanUser(t, conn, enums.RoleAdmin)
	item := seedLoanItem(t, conn, true)

	firstLoan, err := svc.CreateLoan(ctx, first.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)
	secondLoan, err := svc.CreateLoan(ctx, second.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)

	_, err = svc.ApproveLoan(ctx, firstLoan.ID, admin.ID)
	require.NoError(t, err)

	_, err = svc.ApproveLoan(ctx, secondLoan.ID, admin.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestApproveLoan_StudentForbidden(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	requester := seedLoanUser(t, conn, enums.RoleStudent)
	otherStudent := seedLoanUser(t, conn, enums.RoleStudent)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, requester.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)

	_, err = svc.ApproveLoan(ctx, loan.ID, otherStudent.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestRejectLoan_NoItemSideEffect(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	admin := seedLoanUser(t, conn, enums.RoleAdmin)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)

	reason := "item reservado para aula"
	rejected, err := svc.RejectLoan(ctx, loan.ID, admin.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusRejected, rejected.ApprovalStatus)
	// rejection only decides the approval; the loan status is untouched
	assert.Equal(t, enums.LoanStatusActive, rejected.Status)
	require.NotNil(t, rejected.Notes)
	assert.Contains(t, *rejected.Notes, "Rejeitado: item reservado para aula")

	// the item was never claimed, so it stays available
	var fresh models.Item
	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.True(t, fresh.Available)
}

func TestRejectLoan_ApprovedLoanConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	admin := seedLoanUser(t, conn, enums.RoleAdmin)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)
	_, err = svc.ApproveLoan(ctx, loan.ID, admin.ID)
	require.NoError(t, err)

	_, err = svc.RejectLoan(ctx, loan.ID, admin.ID, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestReturnLoan(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	professor := seedLoanUser(t, conn, enums.RoleProfessor)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, professor.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)

	condition := enums.ItemConditionRegular
	returned, err := svc.ReturnLoan(ctx, loan.ID, ReturnLoanInput{Condition: &condition})
	require.NoError(t, err)
	assert.Equal(t, enums.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)

	var fresh models.Item
	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.True(t, fresh.Available)
	assert.Equal(t, enums.ItemConditionRegular, fresh.Condition)

	_, err = svc.ReturnLoan(ctx, loan.ID, ReturnLoanInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCancelLoan_TerminalGuard(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	professor := seedLoanUser(t, conn, enums.RoleProfessor)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, professor.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)

	cancelled, err := svc.CancelLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.LoanStatusCancelled, cancelled.Status)

	_, err = svc.CancelLoan(ctx, loan.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestReconcileOverdueAndListings(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	professor := seedLoanUser(t, conn, enums.RoleProfessor)
	overdueItem := seedLoanItem(t, conn, true)
	upcomingItem := seedLoanItem(t, conn, true)

	overdueLoan, err := svc.CreateLoan(ctx, professor.ID, CreateLoanInput{ItemID: overdueItem.ID, DueDate: dueIn(5)})
	require.NoError(t, err)
	// push the due date into the past after creation
	require.NoError(t, conn.Model(&models.Loan{}).
		Where("id = ?", overdueLoan.ID).
		Update("data_devolucao_prevista", time.Now().UTC().AddDate(0, 0, -3)).Error)

	_, err = svc.CreateLoan(ctx, professor.ID, CreateLoanInput{ItemID: upcomingItem.ID, DueDate: dueIn(1)})
	require.NoError(t, err)

	overdue, total, err := svc.ListOverdueLoans(ctx, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, overdue, 1)
	assert.Equal(t, overdueLoan.ID, overdue[0].ID)

	changed, err := svc.ReconcileOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	flagged, err := svc.GetLoan(ctx, overdueLoan.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.LoanStatusOverdue, flagged.Status)

	// already flagged loans stay in the overdue listing
	overdue, total, err = svc.ListOverdueLoans(ctx, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	upcoming, upcomingTotal, err := svc.ListUpcomingLoans(ctx, 2, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), upcomingTotal)
	require.Len(t, upcoming, 1)
	assert.Equal(t, upcomingItem.ID, upcoming[0].ItemID)
}

func TestReconcileOverdue_DueTodayFlips(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	professor := seedLoanUser(t, conn, enums.RoleProfessor)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, professor.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(5)})
	require.NoError(t, err)
	// due today counts as overdue already
	today := time.Now().UTC().Truncate(24 * time.Hour)
	require.NoError(t, conn.Model(&models.Loan{}).
		Where("id = ?", loan.ID).
		Update("data_devolucao_prevista", today).Error)

	overdue, total, err := svc.ListOverdueLoans(ctx, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, overdue, 1)

	changed, err := svc.ReconcileOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	flagged, err := svc.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.LoanStatusOverdue, flagged.Status)
}

func TestLoanWorkflow_StudentRequestApproveReturn(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	admin := seedLoanUser(t, conn, enums.RoleAdmin)
	item := seedLoanItem(t, conn, true)

	loan, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: item.ID, DueDate: dueIn(7)})
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusPending, loan.ApprovalStatus)

	var fresh models.Item
	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.True(t, fresh.Available)

	approved, err := svc.ApproveLoan(ctx, loan.ID, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusApproved, approved.ApprovalStatus)
	assert.Equal(t, enums.LoanStatusActive, approved.Status)
	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.False(t, fresh.Available)

	returned, err := svc.ReturnLoan(ctx, loan.ID, ReturnLoanInput{})
	require.NoError(t, err)
	assert.Equal(t, enums.LoanStatusReturned, returned.Status)
	require.NoError(t, conn.First(&fresh, "id = ?", item.ID).Error)
	assert.True(t, fresh.Available)
}

func TestListPendingLoans(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	student := seedLoanUser(t, conn, enums.RoleStudent)
	professor := seedLoanUser(t, conn, enums.RoleProfessor)
	pendingItem := seedLoanItem(t, conn, true)
	approvedItem := seedLoanItem(t, conn, true)

	pendingLoan, err := svc.CreateLoan(ctx, student.ID, CreateLoanInput{ItemID: pendingItem.ID, DueDate: dueIn(7)})
	require.NoError(t, err)
	_, err = svc.CreateLoan(ctx, professor.ID, CreateLoanInput{ItemID: approvedItem.ID, DueDate: dueIn(7)})
	require.NoError(t, err)

	pending, total, err := svc.ListPendingLoans(ctx, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, pendingLoan.ID, pending[0].ID)
}
