package notifications

import (
	"context"
	"fmt"

	"github.com/acervohq/acervo-backend/pkg/db/models"
	"github.com/acervohq/acervo-backend/pkg/enums"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

// Sender delivers a single notification over its channel.
type Sender interface {
	Send(ctx context.Context, notification *models.Notification) error
}

// SenderRegistry routes notifications to the sender for their channel.
type SenderRegistry struct {
	senders map[enums.NotificationChannel]Sender
}

// NewSenderRegistry builds an empty registry.
func NewSenderRegistry() *SenderRegistry {
	return &SenderRegistry{senders: make(map[enums.NotificationChannel]Sender)}
}

// Register binds a sender to a channel, replacing any previous binding.
func (r *SenderRegistry) Register(channel enums.NotificationChannel, sender Sender) {
	if sender == nil {
		return
	}
	r.senders[channel] = sender
}

// Send dispatches through the sender registered for the notification channel.
func (r *SenderRegistry) Send(ctx context.Context, notification *models.Notification) error {
	sender, ok := r.senders[notification.Channel]
	if !ok {
		return fmt.Errorf("no sender registered for channel %q", notification.Channel)
	}
	return sender.Send(ctx, notification)
}

// LogSender records the delivery in the log instead of calling a provider.
// It stands in until an SMTP or WhatsApp integration lands.
type LogSender struct {
	channel enums.NotificationChannel
	logg    *logger.Logger
}

// NewLogSender builds a log-only sender for the given channel.
func NewLogSender(channel enums.NotificationChannel, logg *logger.Logger) (*LogSender, error) {
	if !channel.IsValid() {
		return nil, fmt.Errorf("invalid notification channel %q", channel)
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LogSender{channel: channel, logg: logg}, nil
}

func (s *LogSender) Send(ctx context.Context, notification *models.Notification) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"channel":         string(s.channel),
		"notification_id": notification.ID.String(),
		"recipient_id":    notification.RecipientID.String(),
		"subject":         notification.Subject,
	})
	s.logg.Info(ctx, "notification delivered")
	return nil
}
