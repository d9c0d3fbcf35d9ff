package enums

import "fmt"

// NotificationChannel selects how a scheduled message is delivered.
type NotificationChannel string

const (
	NotificationChannelEmail    NotificationChannel = "email"
	NotificationChannelWhatsApp NotificationChannel = "whatsapp"
)

var validNotificationChannels = []NotificationChannel{
	NotificationChannelEmail,
	NotificationChannelWhatsApp,
}

// IsValid reports whether the value is a known NotificationChannel.
func (n NotificationChannel) IsValid() bool {
	for _, candidate := range validNotificationChannels {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationChannel converts raw input into a NotificationChannel.
func ParseNotificationChannel(value string) (NotificationChannel, error) {
	for _, candidate := range validNotificationChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification channel %q", value)
}

// NotificationStatus tracks delivery state of a scheduled message.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pendente"
	NotificationStatusSent    NotificationStatus = "enviada"
	NotificationStatusFailed  NotificationStatus = "falha"
)

var validNotificationStatuses = []NotificationStatus{
	NotificationStatusPending,
	NotificationStatusSent,
	NotificationStatusFailed,
}

// IsValid reports whether the value is a known NotificationStatus.
func (n NotificationStatus) IsValid() bool {
	for _, candidate := range validNotificationStatuses {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationStatus converts raw input into a NotificationStatus.
func ParseNotificationStatus(value string) (NotificationStatus, error) {
	for _, candidate := range validNotificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification status %q", value)
}
