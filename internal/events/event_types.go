package events

import (
	"time"

	"github.com/spec-kit/gym-platform/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMemberRegistered   EventType = "member_registered"
	EventPaymentReceived    EventType = "payment_received"
	EventMembershipAssigned EventType = "membership_assigned"
	EventClassBooked        EventType = "class_booked"
)

// Event represents a domain event emitted by services or external
// collaborators (checkout, membership assignment, class booking).
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	Recipient domain.Recipient `json:"recipient"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload"`
}

// MemberRegisteredPayload payload.
type MemberRegisteredPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PaymentReceivedPayload payload.
type PaymentReceivedPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	PlanName string `json:"plan_name,omitempty"`
}

// MembershipAssignedPayload payload.
type MembershipAssignedPayload struct {
	PlanName  string    `json:"plan_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ClassBookedPayload payload.
type ClassBookedPayload struct {
	ClassName string    `json:"class_name"`
	StartsAt  time.Time `json:"starts_at"`
}
