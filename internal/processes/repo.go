package processes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

// ProcessFilter narrows administrative process listings. Zero fields are ignored.
type ProcessFilter struct {
	UserID *uuid.UUID
	LoanID *uuid.UUID
	Type   *enums.ProcessType
	Status *enums.ProcessStatus
}

var processSortColumns = map[string]string{
	"tipo":           "tipo",
	"status":         "status",
	"dataOcorrencia": "data_ocorrencia",
	"createdAt":      "created_at",
}

// Repository wires together administrative process persistence helpers.
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

// Create inserts a new process row.
func (r *Repository) Create(ctx context.Context, process *models.AdministrativeProcess) (*models.AdministrativeProcess, error) {
	if err := r.db.WithContext(ctx).Create(process).Error; err != nil {
		return nil, err
	}
	return process, nil
}

// FindByID loads a process with its user and loan.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AdministrativeProcess, error) {
	var process models.AdministrativeProcess
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Loan").
		First(&process, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &process, nil
}

// Update saves the full process row.
func (r *Repository) Update(ctx context.Context, process *models.AdministrativeProcess) (*models.AdministrativeProcess, error) {
	if err := r.db.WithContext(ctx).Save(process).Error; err != nil {
		return nil, err
	}
	return process, nil
}

// List returns a page of processes plus the total count for the same filter.
func (r *Repository) List(ctx context.Context, filter ProcessFilter, page pagination.Params) ([]models.AdministrativeProcess, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.AdministrativeProcess
	query := pagination.Apply(r.filtered(ctx, filter), page, "created_at", processSortColumns)
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *Repository) filtered(ctx context.Context, filter ProcessFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.AdministrativeProcess{})

	if filter.UserID != nil {
		query = query.Where("usuario_id = ?", *filter.UserID)
	}
	if filter.LoanID != nil {
		query = query.Where("emprestimo_id = ?", *filter.LoanID)
	}
	if filter.Type != nil {
		query = query.Where("tipo = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}
