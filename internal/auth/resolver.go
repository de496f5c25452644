package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/gym-platform/internal/domain"
	"github.com/spec-kit/gym-platform/internal/repository"
)

// CookieNames maps each role to its session cookie. Two names let a
// member session and an operator session coexist in one browser.
type CookieNames struct {
	Member   string
	Operator string
}

// ForRole returns the cookie name for a namespace.
func (c CookieNames) ForRole(role domain.Role) string {
	if role == domain.RoleOperator {
		return c.Operator
	}
	return c.Member
}

// CookieReader abstracts the request's cookie jar.
type CookieReader interface {
	Cookies(key string, defaultValue ...string) string
}

// Resolver turns a request's cookies into a verified Identity.
//
// Selection is strict per route namespace: an operator-scoped route reads
// only the operator cookie and a member-scoped route only the member
// cookie. A request carrying the wrong-namespace token fails closed with
// ErrNoToken rather than falling back to the other cookie.
type Resolver struct {
	tokens    *TokenManager
	members   repository.MemberRepository
	operators repository.OperatorRepository
	cookies   CookieNames
}

// NewResolver constructs a resolver.
func NewResolver(tokens *TokenManager, members repository.MemberRepository, operators repository.OperatorRepository, cookies CookieNames) *Resolver {
	return &Resolver{tokens: tokens, members: members, operators: operators, cookies: cookies}
}

// Resolve validates the namespace's session cookie and loads the identity
// record. The role returned to callers is the stored one; the token's role
// claim proves nothing beyond subject identity. Read-only: tokens are
// never extended or refreshed here.
func (r *Resolver) Resolve(ctx context.Context, cookies CookieReader, namespace domain.Role) (*domain.Identity, error) {
	tokenStr := cookies.Cookies(r.cookies.ForRole(namespace))
	if tokenStr == "" {
		return nil, ErrNoToken
	}

	claims, err := r.tokens.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}

	switch namespace {
	case domain.RoleMember:
		member, err := r.members.GetByID(ctx, claims.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrIdentityNotFound
			}
			return nil, err
		}
		return member.AsIdentity(), nil
	case domain.RoleOperator:
		operator, err := r.operators.GetByID(ctx, claims.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrIdentityNotFound
			}
			return nil, err
		}
		return operator.AsIdentity(), nil
	default:
		return nil, ErrNoToken
	}
}
