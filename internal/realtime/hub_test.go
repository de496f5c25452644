package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gym-platform/internal/domain"
	"github.com/spec-kit/gym-platform/internal/observability"
)

type fakeConn struct {
	mu     sync.Mutex
	events []outboundEvent
	fail   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("write failed")
	}
	c.events = append(c.events, v.(outboundEvent))
	return nil
}

func (c *fakeConn) received() []outboundEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]outboundEvent{}, c.events...)
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(time.Second, zap.NewNop(), observability.NewMetrics())
}

func testNotification(recipient domain.Recipient, title string) *domain.Notification {
	return &domain.Notification{
		ID:        "n-" + title,
		Recipient: recipient,
		Title:     title,
		Category:  domain.CategoryNeutral,
		CreatedAt: time.Now().UTC(),
	}
}

func TestBroadcastFanOut(t *testing.T) {
	hub := newTestHub(t)
	recipient := domain.MemberRecipient("u1")

	// Two tabs for the same recipient, one connection elsewhere.
	tab1, tab2, other := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Attach(tab1).Register(recipient)
	hub.Attach(tab2).Register(recipient)
	hub.Attach(other).Register(domain.MemberRecipient("u2"))

	hub.Broadcast(testNotification(recipient, "Payment received"))

	for i, conn := range []*fakeConn{tab1, tab2} {
		events := conn.received()
		if len(events) != 1 {
			t.Fatalf("tab%d received %d events, want 1", i+1, len(events))
		}
		if events[0].Event != EventNotificationNew {
			t.Errorf("event = %q, want %q", events[0].Event, EventNotificationNew)
		}
		payload := events[0].Data.(NotificationPayload)
		if payload.Title != "Payment received" {
			t.Errorf("title = %q, want %q", payload.Title, "Payment received")
		}
	}
	if got := other.received(); len(got) != 0 {
		t.Fatalf("other room received %d events, want 0", len(got))
	}
}

func TestBroadcastRoleIsolation(t *testing.T) {
	hub := newTestHub(t)

	// The same raw id in both identity spaces must land in separate rooms.
	memberConn, operatorConn := &fakeConn{}, &fakeConn{}
	hub.Attach(memberConn).Register(domain.MemberRecipient("A"))
	hub.Attach(operatorConn).Register(domain.OperatorRecipient("A"))

	hub.Broadcast(testNotification(domain.MemberRecipient("A"), "member only"))

	if len(memberConn.received()) != 1 {
		t.Fatal("member connection did not receive the event")
	}
	if len(operatorConn.received()) != 0 {
		t.Fatal("operator connection received a member-addressed event")
	}
}

func TestBroadcastEmptyRoomDrops(t *testing.T) {
	hub := newTestHub(t)

	// No registrations at all; must not panic or block.
	hub.Broadcast(testNotification(domain.MemberRecipient("u1"), "dropped"))

	if size := hub.RoomSize(domain.MemberRecipient("u1")); size != 0 {
		t.Fatalf("RoomSize = %d, want 0", size)
	}
}

func TestRegisterSupersedes(t *testing.T) {
	hub := newTestHub(t)

	conn := &fakeConn{}
	session := hub.Attach(conn)
	session.Register(domain.MemberRecipient("u1"))
	session.Register(domain.MemberRecipient("u2"))

	if size := hub.RoomSize(domain.MemberRecipient("u1")); size != 0 {
		t.Fatalf("old room size = %d, want 0", size)
	}
	if size := hub.RoomSize(domain.MemberRecipient("u2")); size != 1 {
		t.Fatalf("new room size = %d, want 1", size)
	}

	hub.Broadcast(testNotification(domain.MemberRecipient("u1"), "stale"))
	hub.Broadcast(testNotification(domain.MemberRecipient("u2"), "current"))

	events := conn.received()
	if len(events) != 1 {
		t.Fatalf("received %d events, want 1", len(events))
	}
	if payload := events[0].Data.(NotificationPayload); payload.Title != "current" {
		t.Errorf("title = %q, want %q", payload.Title, "current")
	}
}

func TestCloseRemovesMembership(t *testing.T) {
	hub := newTestHub(t)
	recipient := domain.MemberRecipient("u1")

	conn := &fakeConn{}
	session := hub.Attach(conn)
	session.Register(recipient)
	session.Close()

	if size := hub.RoomSize(recipient); size != 0 {
		t.Fatalf("RoomSize after close = %d, want 0", size)
	}

	// Register after close is ignored.
	session.Register(recipient)
	if size := hub.RoomSize(recipient); size != 0 {
		t.Fatalf("RoomSize after closed register = %d, want 0", size)
	}

	hub.Broadcast(testNotification(recipient, "late"))
	if len(conn.received()) != 0 {
		t.Fatal("closed session received an event")
	}
}

func TestBroadcastSurvivesWriteFailure(t *testing.T) {
	hub := newTestHub(t)
	recipient := domain.MemberRecipient("u1")

	broken, healthy := &fakeConn{fail: true}, &fakeConn{}
	hub.Attach(broken).Register(recipient)
	hub.Attach(healthy).Register(recipient)

	hub.Broadcast(testNotification(recipient, "best effort"))

	if len(healthy.received()) != 1 {
		t.Fatal("healthy connection missed the event after a peer write failure")
	}
}

func TestConcurrentJoinLeaveBroadcast(t *testing.T) {
	hub := newTestHub(t)
	recipient := domain.MemberRecipient("u1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := hub.Attach(&fakeConn{})
			session.Register(recipient)
			hub.Broadcast(testNotification(recipient, "spin"))
			session.Close()
		}()
	}
	wg.Wait()

	if size := hub.RoomSize(recipient); size != 0 {
		t.Fatalf("RoomSize after churn = %d, want 0", size)
	}
}
