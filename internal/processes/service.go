package processes

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

// Service exposes administrative process operations for lost, damaged or
// stolen items.
type Service interface {
	OpenCase(ctx context.Context, input OpenCaseInput) (*models.AdministrativeProcess, error)
	GetCase(ctx context.Context, id uuid.UUID) (*models.AdministrativeProcess, error)
	UpdateCase(ctx context.Context, id uuid.UUID, input UpdateCaseInput) (*models.AdministrativeProcess, error)
	ListCases(ctx context.Context, filter ProcessFilter, page pagination.Params) ([]models.AdministrativeProcess, int64, error)
	ListOpenCases(ctx context.Context, page pagination.Params) ([]models.AdministrativeProcess, int64, error)

	ResolveCase(ctx context.Context, id uuid.UUID, input ResolveCaseInput) (*models.AdministrativeProcess, error)
	ReferCaseToJustice(ctx context.Context, id uuid.UUID, notes *string) (*models.AdministrativeProcess, error)
}

// OpenCaseInput holds the validated payload to open a case.
type OpenCaseInput struct {
	LoanID      *uuid.UUID
	UserID      uuid.UUID
	Type        enums.ProcessType
	Description string
	FineCents   *int64
	OccurredAt  time.Time
	Notes       *string
}

// UpdateCaseInput holds optional mutation values for an open case.
type UpdateCaseInput struct {
	Description *string
	FineCents   *int64
	Notes       *string
	InProgress  *bool
}

// ResolveCaseInput carries the resolution recorded when a case closes.
type ResolveCaseInput struct {
	Outcome   string
	FineCents *int64
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs an administrative process service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("process repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// OpenCase registers a new administrative process in the open state.
func (s *service) OpenCase(ctx context.Context, input OpenCaseInput) (*models.AdministrativeProcess, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tipo de processo inválido")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "descrição é obrigatória")
	}
	if input.FineCents != nil && *input.FineCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor da multa não pode ser negativo")
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	process := &models.AdministrativeProcess{
		LoanID:      input.LoanID,
		UserID:      input.UserID,
		Type:        input.Type,
		Status:      enums.ProcessStatusOpen,
		Description: description,
		FineCents:   input.FineCents,
		OccurredAt:  occurredAt,
		Notes:       input.Notes,
	}

	created, err := s.repo.Create(ctx, process)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert process")
	}
	return created, nil
}

// GetCase loads a process with its user and loan.
func (s *service) GetCase(ctx context.Context, id uuid.UUID) (*models.AdministrativeProcess, error) {
	process, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "processo não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load process")
	}
	return process, nil
}

// UpdateCase applies partial updates to a case that is still open.
func (s *service) UpdateCase(ctx context.Context, id uuid.UUID, input UpdateCaseInput) (*models.AdministrativeProcess, error) {
	process, err := s.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}
	if process.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "processo já foi encerrado")
	}

	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "descrição é obrigatória")
		}
		process.Description = description
	}
	if input.FineCents != nil {
		if *input.FineCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor da multa não pode ser negativo")
		}
		process.FineCents = input.FineCents
	}
	if input.Notes != nil {
		process.Notes = input.Notes
	}
	if input.InProgress != nil && *input.InProgress {
		process.Status = enums.ProcessStatusInProgress
	}

	updated, err := s.repo.Update(ctx, process)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update process")
	}
	return updated, nil
}

// ListCases returns a filtered page of processes with the total count.
func (s *service) ListCases(ctx context.Context, filter ProcessFilter, page pagination.Params) ([]models.AdministrativeProcess, int64, error) {
	list, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list processes")
	}
	return list, total, nil
}

// ListOpenCases returns processes that still need a decision.
func (s *service) ListOpenCases(ctx context.Context, page pagination.Params) ([]models.AdministrativeProcess, int64, error) {
	open := enums.ProcessStatusOpen
	return s.ListCases(ctx, ProcessFilter{Status: &open}, page)
}

// ResolveCase closes a case with its resolution. Resolving a case that
// already reached a terminal state is a conflict.
func (s *service) ResolveCase(ctx context.Context, id uuid.UUID, input ResolveCaseInput) (*models.AdministrativeProcess, error) {
	outcome := strings.TrimSpace(input.Outcome)
	if outcome == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resolução é obrigatória")
	}
	if input.FineCents != nil && *input.FineCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor da multa não pode ser negativo")
	}

	process, err := s.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}
	if process.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "processo já foi encerrado")
	}

	resolvedAt := s.now()
	process.Status = enums.ProcessStatusResolved
	process.Outcome = &outcome
	process.ResolvedAt = &resolvedAt
	if input.FineCents != nil {
		process.FineCents = input.FineCents
	}

	updated, err := s.repo.Update(ctx, process)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update process")
	}
	return updated, nil
}

// ReferCaseToJustice hands an unresolved case over to the legal system. The
// resolution date stays empty: referral is not a resolution.
func (s *service) ReferCaseToJustice(ctx context.Context, id uuid.UUID, notes *string) (*models.AdministrativeProcess, error) {
	process, err := s.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}
	if process.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "processo já foi encerrado")
	}

	process.Status = enums.ProcessStatusReferredToJustice
	if notes != nil && *notes != "" {
		process.Notes = appendNote(process.Notes, *notes)
	}

	updated, err := s.repo.Update(ctx, process)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update process")
	}
	return updated, nil
}

func appendNote(notes *string, entry string) *string {
	if notes == nil || *notes == "" {
		return &entry
	}
	joined := *notes + "\n" + entry
	return &joined
}
