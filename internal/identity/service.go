package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/acervohq/acervo-backend/pkg/config"
	"github.com/acervohq/acervo-backend/pkg/cpf"
	"github.com/acervohq/acervo-backend/pkg/db"
	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/pagination"
	"github.com/acervohq/acervo-backend/pkg/security"
)

// Service exposes user identity and professor upgrade operations.
type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error)
	Authenticate(ctx context.Context, rawCPF, password string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, filter UserFilter, page pagination.Params) ([]models.User, int64, error)

	RequestProfessorUpgrade(ctx context.Context, userID uuid.UUID) (*models.User, error)
	ApproveProfessorUpgrade(ctx context.Context, userID uuid.UUID, input ApproveProfessorInput) (*models.Professor, error)
	RejectProfessorUpgrade(ctx context.Context, userID uuid.UUID) (*models.User, error)

	GetProfessor(ctx context.Context, id uuid.UUID) (*models.Professor, error)
	UpdateProfessor(ctx context.Context, id uuid.UUID, input UpdateProfessorInput) (*models.Professor, error)
	ListProfessors(ctx context.Context, filter ProfessorFilter, page pagination.Params) ([]models.Professor, int64, error)
}

// CreateUserInput holds the validated payload to register a user.
type CreateUserInput struct {
	CPF       string
	RG        string
	FullName  string
	BirthDate time.Time
	Password  string
	Role      *enums.Role
	PhotoURL  *string
	Email     *string
	Phone     *string
	WhatsApp  *string
	Address   *string
}

// UpdateUserInput holds optional mutation values for a user.
type UpdateUserInput struct {
	FullName *string
	PhotoURL *string
	Email    *string
	Phone    *string
	WhatsApp *string
	Address  *string
	Role     *enums.Role
	Password *string
}

// ApproveProfessorInput carries the registration data required to promote a user.
type ApproveProfessorInput struct {
	Registration string
	Department   *string
	Title        *string
}

// UpdateProfessorInput holds optional mutation values for a professor record.
type UpdateProfessorInput struct {
	Registration *string
	Department   *string
	Title        *string
	Active       *bool
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	passwordCfg config.PasswordConfig
}

// NewService constructs an identity service instance.
func NewService(repo *Repository, dbClient *db.Client, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("identity repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, passwordCfg: passwordCfg}, nil
}

// CreateUser registers a new user. The very first account becomes super_admin
// so a fresh installation always has a working administrator.
func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	normalizedCPF := cpf.Normalize(input.CPF)
	if !cpf.IsValidFormat(normalizedCPF) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "CPF inválido")
	}

	rg := strings.TrimSpace(input.RG)
	if rg == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "RG é obrigatório")
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome completo é obrigatório")
	}
	if input.BirthDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "data de nascimento é obrigatória")
	}

	role := enums.RoleStudent
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "role inválida")
		}
		role = *input.Role
	}

	var passwordHash *string
	if input.Password != "" {
		hash, err := security.HashPassword(input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		passwordHash = &hash
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count users")
	}
	if total == 0 {
		role = enums.RoleSuperAdmin
	}

	user := &models.User{
		CPF:          normalizedCPF,
		RG:           rg,
		FullName:     fullName,
		BirthDate:    input.BirthDate,
		PhotoURL:     input.PhotoURL,
		Email:        input.Email,
		Phone:        input.Phone,
		WhatsApp:     input.WhatsApp,
		Address:      input.Address,
		PasswordHash: passwordHash,
		Role:         role,
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "CPF ou RG já cadastrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
	}
	return created, nil
}

// Authenticate validates CPF and password credentials. Both unknown CPF and
// wrong password map to the same unauthorized error.
func (s *service) Authenticate(ctx context.Context, rawCPF, password string) (*models.User, error) {
	normalizedCPF := cpf.Normalize(rawCPF)
	if !cpf.IsValidFormat(normalizedCPF) || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
	}

	user, err := s.repo.FindUserByCPF(ctx, normalizedCPF)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user by cpf")
	}
	if user.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
	}

	ok, err := security.VerifyPassword(password, *user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "credenciais inválidas")
	}
	return user, nil
}

// GetUser loads a single user by id.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "usuário não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}

// UpdateUser applies partial updates to the user profile.
func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		fullName := strings.TrimSpace(*input.FullName)
		if fullName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome completo é obrigatório")
		}
		user.FullName = fullName
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "role inválida")
		}
		user.Role = *input.Role
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := security.HashPassword(*input.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		user.PasswordHash = &hash
	}
	if input.PhotoURL != nil {
		user.PhotoURL = input.PhotoURL
	}
	if input.Email != nil {
		user.Email = input.Email
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.WhatsApp != nil {
		user.WhatsApp = input.WhatsApp
	}
	if input.Address != nil {
		user.Address = input.Address
	}

	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}
	return updated, nil
}

// DeleteUser removes the user account.
func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete user")
	}
	return nil
}

// ListUsers returns a filtered page of users with the total count.
func (s *service) ListUsers(ctx context.Context, filter UserFilter, page pagination.Params) ([]models.User, int64, error) {
	users, total, err := s.repo.ListUsers(ctx, filter, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users")
	}
	return users, total, nil
}

// RequestProfessorUpgrade flags a student account for professor review.
func (s *service) RequestProfessorUpgrade(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.RoleStudent {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "somente alunos podem solicitar cadastro de professor")
	}
	if user.ProfessorRequested {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "solicitação de professor já registrada")
	}

	user.ProfessorRequested = true
	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}
	return updated, nil
}

// ApproveProfessorUpgrade promotes a user with a pending request. The role
// change and the professor record are written in one transaction.
func (s *service) ApproveProfessorUpgrade(ctx context.Context, userID uuid.UUID, input ApproveProfessorInput) (*models.Professor, error) {
	registration := strings.TrimSpace(input.Registration)
	if registration == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "matrícula é obrigatória")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.ProfessorRequested {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "usuário não possui solicitação de professor pendente")
	}

	var professor *models.Professor
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		created, err := txRepo.CreateProfessor(ctx, &models.Professor{
			UserID:       user.ID,
			Registration: registration,
			Department:   input.Department,
			Title:        input.Title,
			Active:       true,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "matrícula já cadastrada")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert professor")
		}

		user.Role = enums.RoleProfessor
		user.ProfessorRequested = false
		if _, err := txRepo.UpdateUser(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user role")
		}

		professor = created
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve professor upgrade")
	}
	return professor, nil
}

// RejectProfessorUpgrade clears a pending professor request.
func (s *service) RejectProfessorUpgrade(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.ProfessorRequested {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "usuário não possui solicitação de professor pendente")
	}

	user.ProfessorRequested = false
	updated, err := s.repo.UpdateUser(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}
	return updated, nil
}

// GetProfessor loads a professor record with the underlying user.
func (s *service) GetProfessor(ctx context.Context, id uuid.UUID) (*models.Professor, error) {
	professor, err := s.repo.FindProfessorByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "professor não encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load professor")
	}
	return professor, nil
}

// UpdateProfessor applies partial updates to a professor record.
func (s *service) UpdateProfessor(ctx context.Context, id uuid.UUID, input UpdateProfessorInput) (*models.Professor, error) {
	professor, err := s.GetProfessor(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Registration != nil {
		registration := strings.TrimSpace(*input.Registration)
		if registration == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "matrícula é obrigatória")
		}
		professor.Registration = registration
	}
	if input.Department != nil {
		professor.Department = input.Department
	}
	if input.Title != nil {
		professor.Title = input.Title
	}
	if input.Active != nil {
		professor.Active = *input.Active
	}

	updated, err := s.repo.UpdateProfessor(ctx, professor)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "matrícula já cadastrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update professor")
	}
	return updated, nil
}

// ListProfessors returns a filtered page of professors with the total count.
func (s *service) ListProfessors(ctx context.Context, filter ProfessorFilter, page pagination.Params) ([]models.Professor, int64, error) {
	professors, total, err := s.repo.ListProfessors(ctx, filter, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list professors")
	}
	return professors, total, nil
}
