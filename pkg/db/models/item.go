package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/pkg/enums"
)

// Item is a lendable inventory entry. Available flips to false while the
// item is out on an active loan and back to true on return or cancel.
type Item struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string              `gorm:"column:nome;type:text;not null" json:"nome"`
	Description *string             `gorm:"column:descricao;type:text" json:"descricao,omitempty"`
	Category    *string             `gorm:"column:categoria;type:text" json:"categoria,omitempty"`
	AssetCode   *string             `gorm:"column:codigo_patrimonio;type:text;uniqueIndex" json:"codigoPatrimonio,omitempty"`
	// No gorm default tag on Available: gorm skips zero-valued fields that
	// carry one, which would turn an explicit false into true on insert.
	Available bool                `gorm:"column:disponivel;not null" json:"disponivel"`
	Condition enums.ItemCondition `gorm:"column:condicao;type:text;not null;default:bom" json:"condicao"`
	PhotoURL  *string             `gorm:"column:foto;type:text" json:"foto,omitempty"`
	Location  *string             `gorm:"column:localizacao;type:text" json:"localizacao,omitempty"`
	Tags      *string             `gorm:"column:tags;type:text" json:"tags,omitempty"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Item) TableName() string { return "itens" }
