package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/pkg/enums"
)

// Notification is a scheduled outbound message tied to a loan. The cron
// dispatcher picks up pending rows whose ScheduledFor has passed.
type Notification struct {
	ID           uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LoanID       uuid.UUID                 `gorm:"column:emprestimo_id;type:uuid;not null;index" json:"emprestimoId"`
	RecipientID  uuid.UUID                 `gorm:"column:usuario_id;type:uuid;not null;index" json:"usuarioId"`
	Channel      enums.NotificationChannel `gorm:"column:tipo;type:text;not null" json:"tipo"`
	Subject      string                    `gorm:"column:assunto;type:text;not null" json:"assunto"`
	Body         string                    `gorm:"column:mensagem;type:text;not null" json:"mensagem"`
	Status       enums.NotificationStatus  `gorm:"column:status;type:text;not null;default:pendente;index" json:"status"`
	ScheduledFor time.Time                 `gorm:"column:data_agendamento;not null;index" json:"dataAgendamento"`
	SentAt       *time.Time                `gorm:"column:data_envio" json:"dataEnvio,omitempty"`
	Attempts     int                       `gorm:"column:tentativas;not null;default:0" json:"tentativas"`
	LastError    *string                   `gorm:"column:erro;type:text" json:"erro,omitempty"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Notification) TableName() string { return "notificacoes" }
