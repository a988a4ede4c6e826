package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/site-api/internal/events"
	"github.com/spec-kit/site-api/internal/observability"
)

// NotificationService observes domain events for logging and counters.
// Transactional email is sent inline by the owning services because send
// outcomes feed back into responses; this subscriber is purely observational.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to all domain events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventContactCreated,
		events.EventContactReplied,
		events.EventTicketCreated,
		events.EventTicketReplied,
		events.EventInboundEmailReceived,
	} {
		n.dispatcher.Subscribe(eventType, n.record)
	}
}

func (n *NotificationService) record(_ context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("type", string(event.Type)),
		zap.String("entity_id", event.EntityID),
		zap.Any("payload", event.Payload))
	n.metrics.RecordEvent(string(event.Type))
	return nil
}
