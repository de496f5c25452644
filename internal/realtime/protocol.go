package realtime

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/gym-platform/internal/domain"
)

// Wire event names.
const (
	EventRegister        = "register"
	EventNotificationNew = "notification:new"
)

// Envelope frames every inbound message on the realtime channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RegisterPayload is the client's room registration request.
type RegisterPayload struct {
	Role string `json:"role"`
	ID   string `json:"id"`
}

type outboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// NotificationPayload is the pushed record, mirroring the REST shape so
// clients can merge pushed and listed records by id.
type NotificationPayload struct {
	ID            string    `json:"id"`
	RecipientID   string    `json:"recipientId"`
	RecipientRole string    `json:"recipientRole"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Category      string    `json:"category"`
	Icon          string    `json:"icon"`
	IsRead        bool      `json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}

func notificationPayload(n *domain.Notification) NotificationPayload {
	return NotificationPayload{
		ID:            n.ID,
		RecipientID:   n.Recipient.ID,
		RecipientRole: string(n.Recipient.Role),
		Title:         n.Title,
		Message:       n.Message,
		Category:      string(n.Category),
		Icon:          n.Icon,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
	}
}
