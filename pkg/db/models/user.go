package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/pkg/enums"
)

// User represents the canonical identity entity. CPF and RG are stored
// digits-only; normalization happens before any write or comparison.
type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CPF                string     `gorm:"column:cpf;type:text;not null;uniqueIndex" json:"cpf"`
	RG                 string     `gorm:"column:rg;type:text;not null;uniqueIndex" json:"rg"`
	FullName           string     `gorm:"column:nome_completo;type:text;not null" json:"nomeCompleto"`
	BirthDate          time.Time  `gorm:"column:data_nascimento;type:date;not null" json:"dataNascimento"`
	PhotoURL           *string    `gorm:"column:foto_perfil;type:text" json:"fotoPerfil,omitempty"`
	Email              *string    `gorm:"column:email;type:text" json:"email,omitempty"`
	Phone              *string    `gorm:"column:telefone;type:text" json:"telefone,omitempty"`
	WhatsApp           *string    `gorm:"column:whatsapp;type:text" json:"whatsapp,omitempty"`
	Address            *string    `gorm:"column:endereco;type:text" json:"endereco,omitempty"`
	PasswordHash       *string    `gorm:"column:senha_hash;type:text" json:"-"`
	Role               enums.Role `gorm:"column:role;type:text;not null;default:aluno" json:"role"`
	ProfessorRequested bool       `gorm:"column:solicitacao_professor;not null;default:false" json:"solicitacaoProfessor"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName pins the legacy table name.
func (User) TableName() string { return "usuarios" }
