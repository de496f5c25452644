package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gym-platform/internal/api/dto"
	"github.com/spec-kit/gym-platform/internal/auth"
	"github.com/spec-kit/gym-platform/internal/domain"
	"github.com/spec-kit/gym-platform/internal/service"
)

// NotificationOperations is the service surface the handler consumes.
type NotificationOperations interface {
	Create(ctx context.Context, recipient domain.Recipient, input service.CreateNotificationInput) (*domain.Notification, error)
	List(ctx context.Context, recipient domain.Recipient, limit int) ([]*domain.Notification, int64, error)
	MarkRead(ctx context.Context, id string, requester domain.Recipient) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, requester domain.Recipient) (int64, error)
	Delete(ctx context.Context, id string, requester domain.Recipient) error
}

// NotificationsHandler serves the notification REST surface for both
// role namespaces; the resolved identity scopes every call.
type NotificationsHandler struct {
	notifications NotificationOperations
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications NotificationOperations) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List handles GET /{role}/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	requester, err := requesterFromContext(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit")
	notifications, unread, err := h.notifications.List(c.UserContext(), requester, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"notifications": dto.NotificationsFromDomain(notifications),
		"unreadCount":   unread,
	})
}

// ReadAll handles PUT /{role}/notifications/read-all.
func (h *NotificationsHandler) ReadAll(c *fiber.Ctx) error {
	requester, err := requesterFromContext(c)
	if err != nil {
		return err
	}

	modified, err := h.notifications.MarkAllRead(c.UserContext(), requester)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"modifiedCount": modified,
	})
}

// Read handles PUT /{role}/notifications/:id/read.
func (h *NotificationsHandler) Read(c *fiber.Ctx) error {
	requester, err := requesterFromContext(c)
	if err != nil {
		return err
	}

	notification, err := h.notifications.MarkRead(c.UserContext(), c.Params("id"), requester)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"notification": dto.NotificationFromDomain(notification),
	})
}

// Delete handles DELETE /{role}/notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	requester, err := requesterFromContext(c)
	if err != nil {
		return err
	}

	if err := h.notifications.Delete(c.UserContext(), c.Params("id"), requester); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

// Create handles POST /operator/notifications, the operator-action
// producer: an operator may address any recipient.
func (h *NotificationsHandler) Create(c *fiber.Ctx) error {
	if _, ok := auth.IdentityFromContext(c); !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}

	var req dto.CreateNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	role := domain.Role(req.RecipientRole)
	if !role.Valid() || req.RecipientID == "" {
		return fiber.NewError(http.StatusBadRequest, "recipientId and recipientRole required")
	}

	notification, err := h.notifications.Create(c.UserContext(),
		domain.Recipient{Role: role, ID: req.RecipientID},
		service.CreateNotificationInput{
			Title:    req.Title,
			Message:  req.Message,
			Category: domain.NotificationCategory(req.Category),
			Icon:     req.Icon,
		})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"notification": dto.NotificationFromDomain(notification),
	})
}

func requesterFromContext(c *fiber.Ctx) (domain.Recipient, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return domain.Recipient{}, fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return domain.Recipient{Role: identity.Role, ID: identity.ID}, nil
}
