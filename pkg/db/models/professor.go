package models

import (
	"time"

	"github.com/google/uuid"
)

// Professor is the record created when a professor upgrade request is
// approved. Registration (matricula) is institution-assigned and unique.
type Professor struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"column:usuario_id;type:uuid;not null;uniqueIndex" json:"usuarioId"`
	Registration string    `gorm:"column:matricula;type:text;not null;uniqueIndex" json:"matricula"`
	Department   *string   `gorm:"column:departamento;type:text" json:"departamento,omitempty"`
	Title        *string   `gorm:"column:cargo;type:text" json:"cargo,omitempty"`
	Active       bool      `gorm:"column:ativo;not null" json:"ativo"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"usuario,omitempty"`
}

func (Professor) TableName() string { return "professores" }
