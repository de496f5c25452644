package worker

import (
	"github.com/spec-kit/gym-platform/internal/events"
	"github.com/spec-kit/gym-platform/internal/service"
)

// StartNotificationWorker registers notification event handlers.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}
