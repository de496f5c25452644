package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-platform/internal/api/http/handlers"
	"github.com/spec-kit/gym-platform/internal/auth"
	"github.com/spec-kit/gym-platform/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Members        *handlers.MembersHandler
	Operators      *handlers.OperatorsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.Middleware
	Hub            *realtime.Hub
	RealtimePath   string
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes under the two role namespaces.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	member := app.Group("/member")
	member.Post("/auth/register", cfg.Members.Register)
	member.Post("/auth/login", cfg.Members.Login)
	member.Post("/auth/logout", cfg.Members.Logout)

	memberNotifications := member.Group("/notifications", cfg.AuthMiddleware.RequireMember())
	memberNotifications.Get("/", cfg.Notifications.List)
	memberNotifications.Put("/read-all", cfg.Notifications.ReadAll)
	memberNotifications.Put("/:id/read", cfg.Notifications.Read)
	memberNotifications.Delete("/:id", cfg.Notifications.Delete)

	operator := app.Group("/operator")
	operator.Post("/auth/login", cfg.Operators.Login)
	operator.Post("/auth/logout", cfg.Operators.Logout)

	operatorNotifications := operator.Group("/notifications", cfg.AuthMiddleware.RequireOperator())
	operatorNotifications.Get("/", cfg.Notifications.List)
	operatorNotifications.Post("/", cfg.Notifications.Create)
	operatorNotifications.Put("/read-all", cfg.Notifications.ReadAll)
	operatorNotifications.Put("/:id/read", cfg.Notifications.Read)
	operatorNotifications.Delete("/:id", cfg.Notifications.Delete)

	app.Get(cfg.RealtimePath, realtime.Upgrade(), realtime.Handler(cfg.Hub, cfg.Logger))
}
