package dto

import (
	"time"

	"github.com/spec-kit/gym-platform/internal/domain"
)

// NotificationResponse is the REST shape of a notification. It matches
// the realtime payload field-for-field so clients can merge by id.
type NotificationResponse struct {
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

// NotificationFromDomain converts a domain record.
func NotificationFromDomain(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
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

// NotificationsFromDomain converts a slice, never returning nil.
func NotificationsFromDomain(notifications []*domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, NotificationFromDomain(n))
	}
	return out
}

// CreateNotificationRequest is the operator-facing producer payload.
type CreateNotificationRequest struct {
	RecipientID   string `json:"recipientId"`
	RecipientRole string `json:"recipientRole"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	Icon          string `json:"icon"`
}
