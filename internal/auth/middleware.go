package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-platform/internal/domain"
)

const identityKey = "auth_identity"

// Middleware guards role-scoped route groups with the session resolver.
type Middleware struct {
	resolver *Resolver
}

// NewMiddleware constructs middleware.
func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// RequireMember resolves the member session cookie or rejects with 401.
func (m *Middleware) RequireMember() fiber.Handler {
	return m.require(domain.RoleMember)
}

// RequireOperator resolves the operator session cookie or rejects with 401.
func (m *Middleware) RequireOperator() fiber.Handler {
	return m.require(domain.RoleOperator)
}

func (m *Middleware) require(namespace domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := m.resolver.Resolve(c.UserContext(), c, namespace)
		if err != nil {
			return ToDomainError(err)
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFromContext retrieves the resolved identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
