package domain

import "time"

// NotificationCategory classifies a notification for client rendering.
type NotificationCategory string

const (
	CategorySuccess NotificationCategory = "SUCCESS"
	CategoryError   NotificationCategory = "ERROR"
	CategoryNeutral NotificationCategory = "NEUTRAL"
)

// Valid reports whether the category is a known value.
func (c NotificationCategory) Valid() bool {
	switch c {
	case CategorySuccess, CategoryError, CategoryNeutral:
		return true
	}
	return false
}

// Notification is an in-app message addressed to exactly one recipient.
// Only IsRead ever changes after creation.
type Notification struct {
	ID        string
	Recipient Recipient
	Title     string
	Message   string
	Category  NotificationCategory
	Icon      string
	IsRead    bool
	CreatedAt time.Time
}

// OwnedBy reports whether the requester matches the record's recipient.
// Both role and id must match; id values may collide across identity
// spaces so the role is never optional.
func (n *Notification) OwnedBy(requester Recipient) bool {
	return n.Recipient.Role == requester.Role && n.Recipient.ID == requester.ID
}
