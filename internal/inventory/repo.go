package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

// ItemFilter narrows item listings. Zero fields are ignored.
type ItemFilter struct {
	Search    string
	Category  string
	Condition *enums.ItemCondition
	Available *bool
	Location  string
	Tag       string
}

var itemSortColumns = map[string]string{
	"nome":      "nome",
	"categoria": "categoria",
	"condicao":  "condicao",
	"createdAt": "created_at",
}

// Repository wires together item persistence helpers.
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

// Create inserts a new item row.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID loads a single item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update saves the full item row.
func (r *Repository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id).Error
}

// List returns a page of items plus the total count for the same filter.
func (r *Repository) List(ctx context.Context, filter ItemFilter, page pagination.Params) ([]models.Item, int64, error) {
	base := r.filtered(ctx, filter)

	var total int64
	if err := base.Model(&models.Item{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	query := pagination.Apply(r.filtered(ctx, filter), page, "created_at", itemSortColumns)
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkUnavailable flips disponivel to false only when the item is still
// available. Returns false when another loan claimed the item first.
func (r *Repository) MarkUnavailable(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND disponivel = ?", id, true).
		Update("disponivel", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkAvailable releases the item back into the pool.
func (r *Repository) MarkAvailable(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("disponivel", true).Error
}

// UpdateCondition sets the physical condition of the item.
func (r *Repository) UpdateCondition(ctx context.Context, id uuid.UUID, condition enums.ItemCondition) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("condicao", condition).Error
}

func (r *Repository) filtered(ctx context.Context, filter ItemFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Item{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(nome) LIKE ? OR LOWER(codigo_patrimonio) LIKE ?", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("categoria = ?", filter.Category)
	}
	if filter.Condition != nil {
		query = query.Where("condicao = ?", *filter.Condition)
	}
	if filter.Available != nil {
		query = query.Where("disponivel = ?", *filter.Available)
	}
	if filter.Location != "" {
		query = query.Where("localizacao = ?", filter.Location)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where("tags LIKE ?", "%"+tag+"%")
	}
	return query
}
