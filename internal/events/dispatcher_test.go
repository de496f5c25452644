package events

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/gym-platform/internal/domain"
)

func TestDispatcherRoutesByType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var payments, bookings int
	dispatcher.Subscribe(EventPaymentReceived, func(_ context.Context, _ Event) error {
		payments++
		return nil
	})
	dispatcher.Subscribe(EventClassBooked, func(_ context.Context, _ Event) error {
		bookings++
		return nil
	})

	event := Event{Type: EventPaymentReceived, Recipient: domain.MemberRecipient("u1")}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if payments != 1 {
		t.Errorf("payment handler calls = %d, want 1", payments)
	}
	if bookings != 0 {
		t.Errorf("booking handler calls = %d, want 0", bookings)
	}
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	dispatcher := NewInMemoryDispatcher(zap.New(core))

	var secondRan bool
	dispatcher.Subscribe(EventMemberRegistered, func(_ context.Context, _ Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventMemberRegistered, func(_ context.Context, _ Event) error {
		secondRan = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventMemberRegistered}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !secondRan {
		t.Fatal("second handler skipped after first errored")
	}

	entries := logs.FilterMessage("event handler failed").All()
	if len(entries) != 1 {
		t.Fatalf("warn entries = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["event_type"]; got != string(EventMemberRegistered) {
		t.Errorf("logged event_type = %v, want %s", got, EventMemberRegistered)
	}
}
