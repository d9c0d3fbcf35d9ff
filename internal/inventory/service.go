package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db"
	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

// Service exposes inventory management operations.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, filter ItemFilter, page pagination.Params) ([]models.Item, int64, error)
	ListAvailableItems(ctx context.Context, page pagination.Params) ([]models.Item, int64, error)
}

// CreateItemInput holds the validated payload to register an item.
type CreateItemInput struct {
	Name        string
	Description *string
	Category    *string
	AssetCode   *string
	Condition   *enums.ItemCondition
	PhotoURL    *string
	Location    *string
	Tags        *string
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	Name        *string
	Description *string
	Category    *string
	AssetCode   *string
	Condition   *enums.ItemCondition
	PhotoURL    *string
	Location    *string
	Tags        *string
}

type itemStore interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ItemFilter, page pagination.Params) ([]models.Item, int64, error)
}

type service struct {
	repo itemStore
}

// NewService constructs an inventory service instance.
func NewService(repo itemStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	return &service{repo: repo}, nil
}

// CreateItem registers a new inventory item, available by default.
func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome é obrigatório")
	}

	condition := enums.ItemConditionGood
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "condição inválida")
		}
		condition = *input.Condition
	}

	item := &models.Item{
		Name:        name,
		Description: input.Description,
		Category:    input.Category,
		AssetCode:   normalizeAssetCode(input.AssetCode),
		Available:   true,
		Condition:   condition,
		PhotoURL:    input.PhotoURL,
		Location:    input.Location,
		Tags:        input.Tags,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "código de patrimônio já cadastrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}
	return created, nil
}

// GetItem loads a single item by id.
func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}
	return item, nil
}

// UpdateItem applies partial updates to the item.
func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*models.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome é obrigatório")
		}
		item.Name = name
	}
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "condição inválida")
		}
		item.Condition = *input.Condition
	}
	if input.Description != nil {
		item.Description = input.Description
	}
	if input.Category != nil {
		item.Category = input.Category
	}
	if input.AssetCode != nil {
		item.AssetCode = normalizeAssetCode(input.AssetCode)
	}
	if input.PhotoURL != nil {
		item.PhotoURL = input.PhotoURL
	}
	if input.Location != nil {
		item.Location = input.Location
	}
	if input.Tags != nil {
		item.Tags = input.Tags
	}

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "código de patrimônio já cadastrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
	}
	return updated, nil
}

// DeleteItem removes the item. Items currently out on loan cannot be deleted.
func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if !item.Available {
		return pkgerrors.New(pkgerrors.CodeConflict, "item está emprestado e não pode ser removido")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
	}
	return nil
}

// ListItems returns a filtered page of items with the total count.
func (s *service) ListItems(ctx context.Context, filter ItemFilter, page pagination.Params) ([]models.Item, int64, error) {
	items, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}
	return items, total, nil
}

// ListAvailableItems returns only items free to be loaned.
func (s *service) ListAvailableItems(ctx context.Context, page pagination.Params) ([]models.Item, int64, error) {
	available := true
	return s.ListItems(ctx, ItemFilter{Available: &available}, page)
}

func normalizeAssetCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
