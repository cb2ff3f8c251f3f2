package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/dealership/internal/events"
	"github.com/spec-kit/dealership/internal/service"
)

// StartNotificationWorker registers notification handlers on the dispatcher
// and returns the service so callers can keep a handle on it.
func StartNotificationWorker(notificationService *service.NotificationService) *service.NotificationService {
	if notificationService == nil {
		return nil
	}
	notificationService.RegisterHandlers()
	return notificationService
}

// LogHandlerFailure is an onError hook for the dispatcher.
func LogHandlerFailure(logger *zap.Logger) func(events.Event, error) {
	return func(event events.Event, err error) {
		logger.Warn("event handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
