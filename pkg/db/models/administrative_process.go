package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/pkg/enums"
)

// AdministrativeProcess records a loss, damage or theft case opened against
// a user, optionally linked to the loan where the incident happened.
// FineCents keeps the fine in integer centavos.
type AdministrativeProcess struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LoanID      *uuid.UUID          `gorm:"column:emprestimo_id;type:uuid;index" json:"emprestimoId,omitempty"`
	UserID      uuid.UUID           `gorm:"column:usuario_id;type:uuid;not null;index" json:"usuarioId"`
	Type        enums.ProcessType   `gorm:"column:tipo;type:text;not null" json:"tipo"`
	Status      enums.ProcessStatus `gorm:"column:status;type:text;not null;default:aberto;index" json:"status"`
	Description string              `gorm:"column:descricao;type:text;not null" json:"descricao"`
	Outcome     *string             `gorm:"column:resolucao;type:text" json:"resolucao,omitempty"`
	FineCents   *int64              `gorm:"column:valor_multa" json:"valorMulta,omitempty"`
	OccurredAt  time.Time           `gorm:"column:data_ocorrencia;not null" json:"dataOcorrencia"`
	ResolvedAt  *time.Time          `gorm:"column:data_resolucao" json:"dataResolucao,omitempty"`
	Notes       *string             `gorm:"column:observacoes;type:text" json:"observacoes,omitempty"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"usuario,omitempty"`
	Loan *Loan `gorm:"foreignKey:LoanID" json:"emprestimo,omitempty"`
}

func (AdministrativeProcess) TableName() string { return "processos_administrativos" }
