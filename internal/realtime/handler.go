package realtime

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-platform/internal/domain"
)

// Upgrade gates the realtime route to websocket upgrade requests.
func Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Handler serves the realtime channel. Each connection attaches a hub
// session and processes register events until the peer disconnects; a
// register with values that match no real identity just creates a room
// nobody broadcasts to.
func Handler(hub *Hub, logger *zap.Logger) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		session := hub.Attach(conn)
		defer session.Close()

		for {
			var envelope Envelope
			if err := conn.ReadJSON(&envelope); err != nil {
				return
			}

			if envelope.Event != EventRegister {
				continue
			}

			var reg RegisterPayload
			if err := json.Unmarshal(envelope.Data, &reg); err != nil {
				logger.Debug("malformed register payload", zap.Error(err))
				continue
			}
			role := domain.Role(reg.Role)
			if !role.Valid() || reg.ID == "" {
				logger.Debug("register ignored",
					zap.String("role", reg.Role),
					zap.String("id", reg.ID))
				continue
			}
			session.Register(domain.Recipient{Role: role, ID: reg.ID})
		}
	})
}
