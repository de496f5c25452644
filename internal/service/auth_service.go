package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/gym-platform/internal/auth"
	"github.com/spec-kit/gym-platform/internal/config"
	"github.com/spec-kit/gym-platform/internal/domain"
	"github.com/spec-kit/gym-platform/internal/events"
	"github.com/spec-kit/gym-platform/internal/repository"
	apperrors "github.com/spec-kit/gym-platform/pkg/util"
)

// AuthService coordinates registration and login flows for both
// principal kinds and issues their session tokens.
type AuthService struct {
	members    repository.MemberRepository
	operators  repository.OperatorRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	MemberRepo   repository.MemberRepository
	OperatorRepo repository.OperatorRepository
	Dispatcher   events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		members:    deps.MemberRepo,
		operators:  deps.OperatorRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// TokenManager exposes the shared token manager for the resolver.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterMember creates a new member account and publishes the
// registration event that seeds the welcome notification.
func (s *AuthService) RegisterMember(ctx context.Context, name, email, password string) (*domain.Member, string, time.Time, error) {
	if _, err := s.members.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	member := &domain.Member{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.MemberStatusActive,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, "", time.Time{}, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMemberRegistered,
			Recipient: domain.MemberRecipient(member.ID),
			Timestamp: time.Now().UTC(),
			Payload:   events.MemberRegisteredPayload{Name: member.Name, Email: member.Email},
		})
	}

	token, exp, err := s.tokenMgr.GenerateToken(member.ID, domain.RoleMember)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return member, token, exp, nil
}

// LoginMember authenticates a member.
func (s *AuthService) LoginMember(ctx context.Context, email, password string) (*domain.Member, string, time.Time, error) {
	member, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(member.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(member.ID, domain.RoleMember)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return member, token, exp, nil
}

// LoginOperator authenticates a dashboard operator.
func (s *AuthService) LoginOperator(ctx context.Context, email, password string) (*domain.Operator, string, time.Time, error) {
	operator, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if !operator.Active {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("operator inactive")
	}
	if err := auth.ComparePassword(operator.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(operator.ID, domain.RoleOperator)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return operator, token, exp, nil
}
