package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gym-platform/internal/domain"
	"github.com/spec-kit/gym-platform/internal/observability"
)

// Conn is the write side of a live connection. *websocket.Conn satisfies
// it; tests substitute fakes.
type Conn interface {
	WriteJSON(v interface{}) error
}

type deadlineSetter interface {
	SetWriteDeadline(t time.Time) error
}

// Hub groups live connections into rooms keyed "{role}:{recipientId}" and
// fans notification events out to them. It performs no authentication:
// callers must only register values they obtained from a resolved session.
type Hub struct {
	mu           sync.RWMutex
	rooms        map[string]map[*Session]struct{}
	writeTimeout time.Duration
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// NewHub constructs an empty hub.
func NewHub(writeTimeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		rooms:        make(map[string]map[*Session]struct{}),
		writeTimeout: writeTimeout,
		logger:       logger,
		metrics:      metrics,
	}
}

// Session tracks one connection's room membership. A connection is in at
// most one room; Register supersedes, Close removes.
type Session struct {
	hub  *Hub
	conn Conn

	writeMu sync.Mutex

	// guarded by hub.mu
	room   string
	closed bool
}

// Attach wraps a new connection. The session starts unregistered and
// receives nothing until Register is called.
func (h *Hub) Attach(conn Conn) *Session {
	return &Session{hub: h, conn: conn}
}

// Register joins the session to the recipient's room, leaving any prior
// room first.
func (s *Session) Register(recipient domain.Recipient) {
	key := recipient.Key()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if s.closed || s.room == key {
		return
	}
	s.hub.leaveLocked(s)

	members, ok := s.hub.rooms[key]
	if !ok {
		members = make(map[*Session]struct{})
		s.hub.rooms[key] = members
	}
	members[s] = struct{}{}
	s.room = key
}

// Close removes the session's room membership. Idempotent; the session
// can never rejoin afterwards.
func (s *Session) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	s.hub.leaveLocked(s)
	s.closed = true
}

func (h *Hub) leaveLocked(s *Session) {
	if s.room == "" {
		return
	}
	if members, ok := h.rooms[s.room]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(h.rooms, s.room)
		}
	}
	s.room = ""
}

// RoomSize reports how many connections are registered for a recipient.
func (h *Hub) RoomSize(recipient domain.Recipient) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[recipient.Key()])
}

// Broadcast emits a notification:new event to every connection in the
// owning room. Delivery is at-most-once: no acknowledgement, no retry,
// and an empty room drops the event. The store remains the durable
// source of truth; a missed event surfaces on the recipient's next list.
func (h *Hub) Broadcast(notification *domain.Notification) {
	key := notification.Recipient.Key()

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.rooms[key]))
	for s := range h.rooms[key] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	event := outboundEvent{
		Event: EventNotificationNew,
		Data:  notificationPayload(notification),
	}

	delivered := 0
	for _, s := range targets {
		if err := s.write(event, h.writeTimeout); err != nil {
			h.logger.Debug("broadcast write failed",
				zap.String("room", key),
				zap.Error(err))
			continue
		}
		delivered++
	}
	h.metrics.RecordBroadcast(key, delivered)
}

func (s *Session) write(v interface{}, timeout time.Duration) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if ds, ok := s.conn.(deadlineSetter); ok && timeout > 0 {
		_ = ds.SetWriteDeadline(time.Now().Add(timeout))
	}
	return s.conn.WriteJSON(v)
}
