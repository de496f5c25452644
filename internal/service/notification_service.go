package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gym-platform/internal/domain"
	"github.com/spec-kit/gym-platform/internal/events"
	"github.com/spec-kit/gym-platform/internal/persistence"
	"github.com/spec-kit/gym-platform/internal/repository"
	apperrors "github.com/spec-kit/gym-platform/pkg/util"
)

// defaultListLimit caps list responses; callers may request less, never more.
const defaultListLimit = 100

// Broadcaster is the push capability handed to the service at
// construction. The service never reaches for a shared global handle.
type Broadcaster interface {
	Broadcast(notification *domain.Notification)
}

// CreateNotificationInput carries the caller-supplied fields of a new
// notification.
type CreateNotificationInput struct {
	Title    string
	Message  string
	Category domain.NotificationCategory
	Icon     string
}

// NotificationDependencies bundles what the service needs.
type NotificationDependencies struct {
	Notifications repository.NotificationRepository
	Members       repository.MemberRepository
	Operators     repository.OperatorRepository
	Broadcaster   Broadcaster
	Cache         *persistence.Redis
}

// NotificationService owns the notification lifecycle: create, list,
// mark-read, delete, plus the push on create.
type NotificationService struct {
	notifications repository.NotificationRepository
	members       repository.MemberRepository
	operators     repository.OperatorRepository
	broadcaster   Broadcaster
	cache         *persistence.Redis
	logger        *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(deps NotificationDependencies, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: deps.Notifications,
		members:       deps.Members,
		operators:     deps.Operators,
		broadcaster:   deps.Broadcaster,
		cache:         deps.Cache,
		logger:        logger,
	}
}

// Create persists a notification for the recipient and emits it to the
// recipient's room. Fails only when the recipient identity does not exist.
func (s *NotificationService) Create(ctx context.Context, recipient domain.Recipient, input CreateNotificationInput) (*domain.Notification, error) {
	if input.Title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if !input.Category.Valid() {
		input.Category = domain.CategoryNeutral
	}

	if err := s.checkRecipientExists(ctx, recipient); err != nil {
		return nil, err
	}

	notification := &domain.Notification{
		ID:        uuid.NewString(),
		Recipient: recipient,
		Title:     input.Title,
		Message:   input.Message,
		Category:  input.Category,
		Icon:      input.Icon,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.cache.InvalidateUnreadCount(ctx, recipient)

	// Best-effort push; a recipient with no open connection discovers
	// the record on their next list call.
	s.broadcaster.Broadcast(notification)

	return notification, nil
}

// List returns the recipient's notifications newest-first plus the unread
// count, bounded by limit (capped at defaultListLimit).
func (s *NotificationService) List(ctx context.Context, recipient domain.Recipient, limit int) ([]*domain.Notification, int64, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	notifications, err := s.notifications.ListByRecipient(ctx, recipient, limit)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}

	unread, ok := s.cache.GetUnreadCount(ctx, recipient)
	if !ok {
		unread, err = s.notifications.CountUnread(ctx, recipient)
		if err != nil {
			return nil, 0, apperrors.MapError(err)
		}
		s.cache.SetUnreadCount(ctx, recipient, unread)
	}

	return notifications, unread, nil
}

// MarkRead flips a single record to read. The requester must own the
// record: both role and id have to match its recipient.
func (s *NotificationService) MarkRead(ctx context.Context, id string, requester domain.Recipient) (*domain.Notification, error) {
	notification, err := s.getOwned(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if !notification.IsRead {
		if err := s.notifications.MarkRead(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("notification", nil)
			}
			return nil, apperrors.MapError(err)
		}
		notification.IsRead = true
		s.cache.InvalidateUnreadCount(ctx, requester)
	}

	return notification, nil
}

// MarkAllRead flips every unread record for the requester. Idempotent; a
// second call reports zero modified.
func (s *NotificationService) MarkAllRead(ctx context.Context, requester domain.Recipient) (int64, error) {
	modified, err := s.notifications.MarkAllRead(ctx, requester)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if modified > 0 {
		s.cache.InvalidateUnreadCount(ctx, requester)
	}
	return modified, nil
}

// Delete removes a record the requester owns. A repeat delete of the same
// id reports not found rather than succeeding silently.
func (s *NotificationService) Delete(ctx context.Context, id string, requester domain.Recipient) error {
	if _, err := s.getOwned(ctx, id, requester); err != nil {
		return err
	}

	if err := s.notifications.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", nil)
		}
		return apperrors.MapError(err)
	}
	s.cache.InvalidateUnreadCount(ctx, requester)
	return nil
}

func (s *NotificationService) getOwned(ctx context.Context, id string, requester domain.Recipient) (*domain.Notification, error) {
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("notification", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if !notification.OwnedBy(requester) {
		return nil, apperrors.NewForbidden("notification belongs to another recipient")
	}
	return notification, nil
}

func (s *NotificationService) checkRecipientExists(ctx context.Context, recipient domain.Recipient) error {
	var err error
	switch recipient.Role {
	case domain.RoleMember:
		_, err = s.members.GetByID(ctx, recipient.ID)
	case domain.RoleOperator:
		_, err = s.operators.GetByID(ctx, recipient.ID)
	default:
		return apperrors.NewValidationError("unknown recipient role", nil)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("recipient", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// RegisterHandlers subscribes system events that produce notifications.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventMemberRegistered, s.handleMemberRegistered)
	dispatcher.Subscribe(events.EventPaymentReceived, s.handlePaymentReceived)
	dispatcher.Subscribe(events.EventMembershipAssigned, s.handleMembershipAssigned)
	dispatcher.Subscribe(events.EventClassBooked, s.handleClassBooked)
}

func (s *NotificationService) handleMemberRegistered(ctx context.Context, event events.Event) error {
	return s.createFromEvent(ctx, event, CreateNotificationInput{
		Title:    "Welcome to the gym",
		Message:  "Your account is ready. Browse programs and book your first class.",
		Category: domain.CategorySuccess,
		Icon:     "welcome",
	})
}

func (s *NotificationService) handlePaymentReceived(ctx context.Context, event events.Event) error {
	return s.createFromEvent(ctx, event, CreateNotificationInput{
		Title:    "Payment received",
		Message:  "Thanks! Your payment was processed.",
		Category: domain.CategorySuccess,
		Icon:     "payment",
	})
}

func (s *NotificationService) handleMembershipAssigned(ctx context.Context, event events.Event) error {
	return s.createFromEvent(ctx, event, CreateNotificationInput{
		Title:    "Membership updated",
		Message:  "A membership plan was assigned to your account.",
		Category: domain.CategoryNeutral,
		Icon:     "membership",
	})
}

func (s *NotificationService) handleClassBooked(ctx context.Context, event events.Event) error {
	return s.createFromEvent(ctx, event, CreateNotificationInput{
		Title:    "Class booked",
		Message:  "Your class booking is confirmed.",
		Category: domain.CategorySuccess,
		Icon:     "calendar",
	})
}

func (s *NotificationService) createFromEvent(ctx context.Context, event events.Event, input CreateNotificationInput) error {
	if _, err := s.Create(ctx, event.Recipient, input); err != nil {
		s.logger.Warn("event notification dropped",
			zap.String("event_type", string(event.Type)),
			zap.String("recipient", event.Recipient.Key()),
			zap.Error(err))
		return err
	}
	return nil
}
