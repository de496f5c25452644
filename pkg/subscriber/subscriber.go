// Package subscriber implements the client side of the realtime
// notification channel: one connection per session, registration after
// the session is resolved, merge-by-id deduplication, and reliance on
// the REST list endpoint for anything missed while disconnected.
package subscriber

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
)

// Notification mirrors the server's pushed and listed record shape.
type Notification struct {
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

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type registerPayload struct {
	Role string `json:"role"`
	ID   string `json:"id"`
}

// Store holds the locally merged notification list. Pushed events and
// list responses race freely; merging by id keeps the list duplicate-free.
type Store struct {
	mu   sync.Mutex
	byID map[string]Notification
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]Notification)}
}

// Merge adds a record unless its id is already present. Returns true if
// the record was appended, false if it was ignored as a duplicate.
func (s *Store) Merge(n Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[n.ID]; exists {
		return false
	}
	s.byID[n.ID] = n
	return true
}

// MergeList folds a REST list response into the store.
func (s *Store) MergeList(notifications []Notification) {
	for _, n := range notifications {
		s.Merge(n)
	}
}

// All returns the merged list, newest first.
func (s *Store) All() []Notification {
	s.mu.Lock()
	out := make([]Notification, 0, len(s.byID))
	for _, n := range s.byID {
		out = append(out, n)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len reports the number of distinct notifications held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Conn is the subset of a websocket connection the subscriber drives.
type Conn interface {
	WriteJSON(v interface{}) error
	ReadJSON(v interface{}) error
	Close() error
}

// Dialer opens connections; tests substitute fakes.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

type wsDialer struct{}

func (wsDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, http.Header{})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Config parameterizes a subscriber.
type Config struct {
	URL  string
	Role string
	ID   string

	// Reconnect backoff; doubles up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration

	// Dialer defaults to the websocket dialer when nil.
	Dialer Dialer

	// OnNotification fires for each record newly merged into the store.
	OnNotification func(Notification)
}

// Subscriber maintains exactly one live connection for a session and
// re-registers after every reconnect.
type Subscriber struct {
	cfg   Config
	store *Store
}

// New builds a subscriber around a store.
func New(cfg Config, store *Store) *Subscriber {
	if cfg.Dialer == nil {
		cfg.Dialer = wsDialer{}
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Subscriber{cfg: cfg, store: store}
}

// Run connects, registers, and consumes pushed events until the context
// is cancelled, reconnecting with backoff on any failure. Zero pushed
// events for a session is normal; the REST list covers those records.
func (s *Subscriber) Run(ctx context.Context) error {
	delay := s.cfg.Backoff
	for {
		registered, err := s.runOnce(ctx)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = s.nextDelay(delay, registered)
	}
}

// nextDelay doubles the reconnect delay up to MaxBackoff, starting over
// from the configured base once a connection made it through registration.
func (s *Subscriber) nextDelay(prev time.Duration, registered bool) time.Duration {
	if registered {
		return s.cfg.Backoff
	}
	next := prev * 2
	if next > s.cfg.MaxBackoff {
		next = s.cfg.MaxBackoff
	}
	return next
}

func (s *Subscriber) runOnce(ctx context.Context) (registered bool, err error) {
	conn, err := s.cfg.Dialer.Dial(ctx, s.cfg.URL)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if err := s.register(conn); err != nil {
		return false, err
	}

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return true, err
		}
		s.Handle(env.Event, env.Data)
	}
}

func (s *Subscriber) register(conn Conn) error {
	data, err := json.Marshal(registerPayload{Role: s.cfg.Role, ID: s.cfg.ID})
	if err != nil {
		return err
	}
	return conn.WriteJSON(envelope{Event: "register", Data: data})
}

// Handle merges one inbound event into the store. Exported so transports
// other than the built-in run loop can feed events through the same
// dedup rule.
func (s *Subscriber) Handle(event string, data []byte) {
	if event != "notification:new" {
		return
	}
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return
	}
	if s.store.Merge(n) && s.cfg.OnNotification != nil {
		s.cfg.OnNotification(n)
	}
}
