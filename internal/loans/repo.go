package loans

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

// LoanFilter narrows loan listings. Zero fields are ignored.
type LoanFilter struct {
	Search         string
	RequesterID    *uuid.UUID
	ItemID         *uuid.UUID
	Status         *enums.LoanStatus
	ApprovalStatus *enums.ApprovalStatus
	DueBefore      *time.Time
	DueAfter       *time.Time
}

var loanSortColumns = map[string]string{
	"dataInicio":            "emprestimos.data_inicio",
	"dataDevolucaoPrevista": "emprestimos.data_devolucao_prevista",
	"status":                "emprestimos.status",
	"createdAt":             "emprestimos.created_at",
}

// Repository wires together loan persistence helpers.
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

// Create inserts a new loan row.
func (r *Repository) Create(ctx context.Context, loan *models.Loan) (*models.Loan, error) {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

// FindByID loads a loan with its item and requester.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	if err := r.db.WithContext(ctx).
		Preload("Item").
		Preload("Requester").
		First(&loan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update saves the full loan row.
func (r *Repository) Update(ctx context.Context, loan *models.Loan) (*models.Loan, error) {
	if err := r.db.WithContext(ctx).Save(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

// CountActiveByRequester counts the user's loans with status active,
// regardless of approval status.
func (r *Repository) CountActiveByRequester(ctx context.Context, requesterID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("usuario_id = ? AND status = ?", requesterID, enums.LoanStatusActive).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// List returns a page of loans plus the total count for the same filter.
func (r *Repository) List(ctx context.Context, filter LoanFilter, page pagination.Params) ([]models.Loan, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Loan
	query := pagination.Apply(r.filtered(ctx, filter), page, "emprestimos.created_at", loanSortColumns).
		Preload("Item").
		Preload("Requester")
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListOverdue returns active loans due today or earlier, plus loans already
// flagged overdue.
func (r *Repository) ListOverdue(ctx context.Context, today time.Time, page pagination.Params) ([]models.Loan, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Loan{}).
			Where("(status = ? AND data_devolucao_prevista <= ?) OR status = ?",
				enums.LoanStatusActive, today, enums.LoanStatusOverdue)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Loan
	query := pagination.Apply(base(), page, "data_devolucao_prevista", loanSortColumns).
		Preload("Item").
		Preload("Requester")
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListDueBetween returns approved active loans whose due date falls inside the window.
func (r *Repository) ListDueBetween(ctx context.Context, from, to time.Time, page pagination.Params) ([]models.Loan, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Loan{}).
			Where("status_aprovacao = ? AND status = ?", enums.ApprovalStatusApproved, enums.LoanStatusActive).
			Where("data_devolucao_prevista >= ? AND data_devolucao_prevista <= ?", from, to)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Loan
	query := pagination.Apply(base(), page, "data_devolucao_prevista", loanSortColumns).
		Preload("Item").
		Preload("Requester")
	if err := query.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// MarkOverdueBatch flips active loans due today or earlier into the overdue
// status and returns how many rows changed.
func (r *Repository) MarkOverdueBatch(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("status = ? AND data_devolucao_prevista <= ?",
			enums.LoanStatusActive, today).
		Update("status", enums.LoanStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *Repository) filtered(ctx context.Context, filter LoanFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Loan{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("JOIN itens ON itens.id = emprestimos.item_id").
			Joins("JOIN usuarios ON usuarios.id = emprestimos.usuario_id").
			Where("LOWER(itens.nome) LIKE ? OR LOWER(usuarios.nome_completo) LIKE ?", pattern, pattern)
	}
	if filter.RequesterID != nil {
		query = query.Where("emprestimos.usuario_id = ?", *filter.RequesterID)
	}
	if filter.ItemID != nil {
		query = query.Where("emprestimos.item_id = ?", *filter.ItemID)
	}
	if filter.Status != nil {
		query = query.Where("emprestimos.status = ?", *filter.Status)
	}
	if filter.ApprovalStatus != nil {
		query = query.Where("emprestimos.status_aprovacao = ?", *filter.ApprovalStatus)
	}
	if filter.DueBefore != nil {
		query = query.Where("emprestimos.data_devolucao_prevista < ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("emprestimos.data_devolucao_prevista >= ?", *filter.DueAfter)
	}
	return query
}
