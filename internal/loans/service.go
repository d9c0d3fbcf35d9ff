package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/internal/inventory"
	"github.com/acervohq/acervo-backend/pkg/db"
	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

// MaxActiveLoans is the per-user ceiling of loans still holding an item.
const MaxActiveLoans = 3

// Service exposes the loan lifecycle operations.
type Service interface {
	CreateLoan(ctx context.Context, requesterID uuid.UUID, input CreateLoanInput) (*models.Loan, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	ListLoans(ctx context.Context, filter LoanFilter, page pagination.Params) ([]models.Loan, int64, error)

	ApproveLoan(ctx context.Context, loanID, approverID uuid.UUID) (*models.Loan, error)
	RejectLoan(ctx context.Context, loanID, approverID uuid.UUID, reason *string) (*models.Loan, error)
	ReturnLoan(ctx context.Context, loanID uuid.UUID, input ReturnLoanInput) (*models.Loan, error)
	CancelLoan(ctx context.Context, loanID uuid.UUID) (*models.Loan, error)

	ListOverdueLoans(ctx context.Context, page pagination.Params) ([]models.Loan, int64, error)
	ListPendingLoans(ctx context.Context, page pagination.Params) ([]models.Loan, int64, error)
	ListUpcomingLoans(ctx context.Context, daysAhead int, page pagination.Params) ([]models.Loan, int64, error)
	ReconcileOverdue(ctx context.Context) (int64, error)
}

// CreateLoanInput holds the validated payload to open a loan.
type CreateLoanInput struct {
	ItemID          uuid.UUID
	StartDate       *time.Time
	DueDate         time.Time
	TakenBy         *string
	TakenFromRoom   *string
	CurrentLocation *string
	Notes           *string
}

// ReturnLoanInput captures the optional data recorded at return time.
type ReturnLoanInput struct {
	Condition *enums.ItemCondition
	Location  *string
	Notes     *string
}

type userLoader interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	repo     *Repository
	itemRepo *inventory.Repository
	users    userLoader
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a loan service instance.
func NewService(repo *Repository, itemRepo *inventory.Repository, users userLoader, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loan repository required")
	}
	if itemRepo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		itemRepo: itemRepo,
		users:    users,
		dbClient: dbClient,
		now:      time.Now,
	}, nil
}

// CreateLoan opens a loan. Requesters who can approve loans get an immediate
// approval and claim the item atomically with the insert; students start
// pending and the item stays available until the approval decision.
func (s *service) CreateLoan(ctx context.Context, requesterID uuid.UUID, input CreateLoanInput) (*models.Loan, error) {
	requester, err := s.users.FindUserByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "usuário não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load requester")
	}

	start := s.today()
	if input.StartDate != nil {
		start = dateOnly(*input.StartDate)
	}
	if input.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "data de devolução prevista é obrigatória")
	}
	due := dateOnly(input.DueDate)
	if due.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "data de devolução não pode ser anterior ao início")
	}

	active, err := s.repo.CountActiveByRequester(ctx, requesterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count active loans")
	}
	if active >= MaxActiveLoans {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "limite de empréstimos ativos atingido")
	}

	loan := &models.Loan{
		ItemID:          input.ItemID,
		RequesterID:     requesterID,
		ApprovalStatus:  enums.ApprovalStatusPending,
		Status:          enums.LoanStatusActive,
		StartDate:       start,
		DueDate:         due,
		TakenBy:         input.TakenBy,
		TakenFromRoom:   input.TakenFromRoom,
		CurrentLocation: input.CurrentLocation,
		Notes:           input.Notes,
	}
	applyAutoApproval(loan, requester)

	if loan.ApprovalStatus == enums.ApprovalStatusApproved {
		if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			claimed, err := s.itemRepo.WithTx(tx).MarkUnavailable(ctx, input.ItemID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: claim item")
			}
			if !claimed {
				return pkgerrors.New(pkgerrors.CodeConflict, "item não está disponível")
			}
			if _, err := s.repo.WithTx(tx).Create(ctx, loan); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert loan")
			}
			return nil
		}); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return nil, typed
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create loan")
		}
		return s.GetLoan(ctx, loan.ID)
	}

	item, err := s.itemRepo.FindByID(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}
	if !item.Available {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "item não está disponível")
	}
	if _, err := s.repo.Create(ctx, loan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert loan")
	}
	return s.GetLoan(ctx, loan.ID)
}

// GetLoan loads a loan with its item and requester.
func (s *service) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "empréstimo não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load loan")
	}
	return loan, nil
}

// ListLoans returns a filtered page of loans with the total count.
func (s *service) ListLoans(ctx context.Context, filter LoanFilter, page pagination.Params) ([]models.Loan, int64, error) {
	loans, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list loans")
	}
	return loans, total, nil
}

// ApproveLoan records the approval decision of an authorized user and claims
// the item atomically with the status update.
func (s *service) ApproveLoan(ctx context.Context, loanID, approverID uuid.UUID) (*models.Loan, error) {
	approver, loan, err := s.loadDecision(ctx, loanID, approverID)
	if err != nil {
		return nil, err
	}

	loan.ApprovalStatus = enums.ApprovalStatusApproved
	setApprover(loan, approver)

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		claimed, err := s.itemRepo.WithTx(tx).MarkUnavailable(ctx, loan.ItemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: claim item")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeConflict, "item não está disponível")
		}
		if _, err := s.repo.WithTx(tx).Update(ctx, loan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update loan")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve loan")
	}
	return loan, nil
}

// RejectLoan denies a pending loan. The item was never claimed for a pending
// loan, so rejection has no availability side effect and the loan status is
// left untouched.
func (s *service) RejectLoan(ctx context.Context, loanID, approverID uuid.UUID, reason *string) (*models.Loan, error) {
	approver, loan, err := s.loadDecision(ctx, loanID, approverID)
	if err != nil {
		return nil, err
	}

	loan.ApprovalStatus = enums.ApprovalStatusRejected
	setApprover(loan, approver)
	if reason != nil && *reason != "" {
		loan.Notes = appendNote(loan.Notes, "Rejeitado: "+*reason)
	}

	updated, err := s.repo.Update(ctx, loan)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update loan")
	}
	return updated, nil
}

// ReturnLoan closes out an active or overdue loan and releases the item.
// Returning a loan that already reached a terminal state is a conflict.
func (s *service) ReturnLoan(ctx context.Context, loanID uuid.UUID, input ReturnLoanInput) (*models.Loan, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "empréstimo já foi encerrado")
	}
	if input.Condition != nil && !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "condição inválida")
	}

	returnedAt := s.now()
	loan.Status = enums.LoanStatusReturned
	loan.ReturnedAt = &returnedAt
	if input.Location != nil {
		loan.CurrentLocation = input.Location
	}
	if input.Notes != nil {
		loan.Notes = input.Notes
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Update(ctx, loan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update loan")
		}
		txItems := s.itemRepo.WithTx(tx)
		if err := txItems.MarkAvailable(ctx, loan.ItemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: release item")
		}
		if input.Condition != nil {
			if err := txItems.UpdateCondition(ctx, loan.ItemID, *input.Condition); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item condition")
			}
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "return loan")
	}
	return loan, nil
}

// CancelLoan cancels a loan that has not been closed yet and releases the item.
func (s *service) CancelLoan(ctx context.Context, loanID uuid.UUID) (*models.Loan, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "empréstimo já foi encerrado")
	}

	loan.Status = enums.LoanStatusCancelled

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Update(ctx, loan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update loan")
		}
		if err := s.itemRepo.WithTx(tx).MarkAvailable(ctx, loan.ItemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: release item")
		}
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel loan")
	}
	return loan, nil
}

// ListOverdueLoans returns loans past their due date.
func (s *service) ListOverdueLoans(ctx context.Context, page pagination.Params) ([]models.Loan, int64, error) {
	loans, total, err := s.repo.ListOverdue(ctx, s.today(), page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list overdue loans")
	}
	return loans, total, nil
}

// ListPendingLoans returns loans awaiting an approval decision.
func (s *service) ListPendingLoans(ctx context.Context, page pagination.Params) ([]models.Loan, int64, error) {
	pending := enums.ApprovalStatusPending
	return s.ListLoans(ctx, LoanFilter{ApprovalStatus: &pending}, page)
}

// ListUpcomingLoans returns active loans due within the next daysAhead days.
func (s *service) ListUpcomingLoans(ctx context.Context, daysAhead int, page pagination.Params) ([]models.Loan, int64, error) {
	if daysAhead <= 0 {
		daysAhead = 1
	}
	from := s.today()
	to := from.AddDate(0, 0, daysAhead)
	loans, total, err := s.repo.ListDueBetween(ctx, from, to, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list upcoming loans")
	}
	return loans, total, nil
}

// ReconcileOverdue flags every active loan due today or earlier as overdue.
func (s *service) ReconcileOverdue(ctx context.Context) (int64, error) {
	changed, err := s.repo.MarkOverdueBatch(ctx, s.today())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark overdue loans")
	}
	return changed, nil
}

func (s *service) loadDecision(ctx context.Context, loanID, approverID uuid.UUID) (*models.User, *models.Loan, error) {
	approver, err := s.users.FindUserByID(ctx, approverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "usuário não encontrado")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load approver")
	}
	if !approver.Role.CanApproveLoans() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "acesso negado")
	}

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	if loan.ApprovalStatus.IsTerminal() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "empréstimo já teve a aprovação decidida")
	}
	return approver, loan, nil
}

func (s *service) today() time.Time {
	return dateOnly(s.now())
}

func appendNote(notes *string, entry string) *string {
	if notes == nil || *notes == "" {
		return &entry
	}
	joined := *notes + "\n" + entry
	return &joined
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// applyAutoApproval grants immediate approval when the requester's own role
// is allowed to approve loans.
func applyAutoApproval(loan *models.Loan, requester *models.User) {
	if !requester.Role.CanApproveLoans() {
		return
	}
	loan.ApprovalStatus = enums.ApprovalStatusApproved
	setApprover(loan, requester)
}

// setApprover records the decision maker in the column matching their role.
// Professors and admins are kept in separate columns.
func setApprover(loan *models.Loan, approver *models.User) {
	id := approver.ID
	if approver.Role == enums.RoleProfessor {
		loan.ProfessorAuthorizerID = &id
		loan.AdminApproverID = nil
		return
	}
	loan.AdminApproverID = &id
	loan.ProfessorAuthorizerID = nil
}
