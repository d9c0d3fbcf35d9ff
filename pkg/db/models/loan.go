package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/pkg/enums"
)

// Loan tracks one item checkout through its full lifecycle. ApprovalStatus
// covers the request phase; Status covers the physical custody phase.
// Exactly one of ProfessorAuthorizerID or AdminApproverID is set once the
// loan leaves the pending state.
type Loan struct {
	ID                    uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID                uuid.UUID            `gorm:"column:item_id;type:uuid;not null;index" json:"itemId"`
	RequesterID           uuid.UUID            `gorm:"column:usuario_id;type:uuid;not null;index" json:"usuarioId"`
	ProfessorAuthorizerID *uuid.UUID           `gorm:"column:professor_autorizador_id;type:uuid" json:"professorAutorizadorId,omitempty"`
	AdminApproverID       *uuid.UUID           `gorm:"column:admin_aprovador_id;type:uuid" json:"adminAprovadorId,omitempty"`
	ApprovalStatus        enums.ApprovalStatus `gorm:"column:status_aprovacao;type:text;not null;default:pendente" json:"statusAprovacao"`
	Status                enums.LoanStatus     `gorm:"column:status;type:text;not null;default:ativo" json:"status"`
	StartDate             time.Time            `gorm:"column:data_inicio;type:date;not null" json:"dataInicio"`
	DueDate               time.Time            `gorm:"column:data_devolucao_prevista;type:date;not null;index" json:"dataDevolucaoPrevista"`
	ReturnedAt            *time.Time           `gorm:"column:data_devolucao_real" json:"dataDevolucaoReal,omitempty"`
	TakenBy               *string              `gorm:"column:pessoa_que_pegou;type:text" json:"pessoaQuePegou,omitempty"`
	TakenFromRoom         *string              `gorm:"column:sala_que_pegou;type:text" json:"salaQuePegou,omitempty"`
	CurrentLocation       *string              `gorm:"column:localizacao_atual;type:text" json:"localizacaoAtual,omitempty"`
	Notes                 *string              `gorm:"column:observacoes;type:text" json:"observacoes,omitempty"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Item      *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Requester *User `gorm:"foreignKey:RequesterID" json:"usuario,omitempty"`
}

func (Loan) TableName() string { return "emprestimos" }
