package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/pagination"
)

// UserFilter narrows user listings. Zero fields are ignored.
type UserFilter struct {
	Search             string
	Role               *enums.Role
	ProfessorRequested *bool
}

// ProfessorFilter narrows professor listings.
type ProfessorFilter struct {
	Search     string
	Department string
	Active     *bool
}

var userSortColumns = map[string]string{
	"nomeCompleto": "nome_completo",
	"role":         "role",
	"createdAt":    "created_at",
}

var professorSortColumns = map[string]string{
	"matricula":    "professores.matricula",
	"departamento": "professores.departamento",
	"createdAt":    "professores.created_at",
}

// Repository wires together user and professor persistence helpers.
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

// CreateUser inserts a new user row.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindUserByID loads a single user.
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByCPF loads a user by normalized CPF.
func (r *Repository) FindUserByCPF(ctx context.Context, cpf string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "cpf = ?", cpf).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser saves the full user row.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user row.
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListUsers returns a page of users plus the total count for the same filter.
func (r *Repository) ListUsers(ctx context.Context, filter UserFilter, page pagination.Params) ([]models.User, int64, error) {
	var total int64
	if err := r.filteredUsers(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	query := pagination.Apply(r.filteredUsers(ctx, filter), page, "created_at", userSortColumns)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CreateProfessor inserts a professor record.
func (r *Repository) CreateProfessor(ctx context.Context, professor *models.Professor) (*models.Professor, error) {
	if err := r.db.WithContext(ctx).Create(professor).Error; err != nil {
		return nil, err
	}
	return professor, nil
}

// FindProfessorByID loads a professor with its user.
func (r *Repository) FindProfessorByID(ctx context.Context, id uuid.UUID) (*models.Professor, error) {
	var professor models.Professor
	if err := r.db.WithContext(ctx).Preload("User").First(&professor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindProfessorByUserID loads the professor record bound to a user.
func (r *Repository) FindProfessorByUserID(ctx context.Context, userID uuid.UUID) (*models.Professor, error) {
	var professor models.Professor
	if err := r.db.WithContext(ctx).First(&professor, "usuario_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &professor, nil
}

// UpdateProfessor saves the full professor row.
func (r *Repository) UpdateProfessor(ctx context.Context, professor *models.Professor) (*models.Professor, error) {
	if err := r.db.WithContext(ctx).Save(professor).Error; err != nil {
		return nil, err
	}
	return professor, nil
}

// ListProfessors returns a page of professors plus the total count.
func (r *Repository) ListProfessors(ctx context.Context, filter ProfessorFilter, page pagination.Params) ([]models.Professor, int64, error) {
	var total int64
	if err := r.filteredProfessors(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var professors []models.Professor
	query := pagination.Apply(r.filteredProfessors(ctx, filter), page, "professores.created_at", professorSortColumns)
	if err := query.Find(&professors).Error; err != nil {
		return nil, 0, err
	}
	return professors, total, nil
}

func (r *Repository) filteredUsers(ctx context.Context, filter UserFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(nome_completo) LIKE ? OR cpf LIKE ?", pattern, pattern)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.ProfessorRequested != nil {
		query = query.Where("solicitacao_professor = ?", *filter.ProfessorRequested)
	}
	return query
}

func (r *Repository) filteredProfessors(ctx context.Context, filter ProfessorFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Professor{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.
			Joins("JOIN usuarios ON usuarios.id = professores.usuario_id").
			Where("LOWER(usuarios.nome_completo) LIKE ? OR professores.matricula LIKE ?", pattern, pattern)
	}
	if filter.Department != "" {
		query = query.Where("departamento = ?", filter.Department)
	}
	if filter.Active != nil {
		query = query.Where("ativo = ?", *filter.Active)
	}
	return query
}
