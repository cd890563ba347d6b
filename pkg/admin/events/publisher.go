package events

import (
	"context"
	"time"

	"crowdfund-be/internal/pkg/logger"
	pkgEvents "crowdfund-be/pkg/events"
	pktNats "crowdfund-be/pkg/nats"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for admin operations
type Publisher interface {
	PublishUserRegistered(ctx context.Context, userId uuid.UUID, email, fullName, source string)
	PublishUserStatusChanged(ctx context.Context, userId uuid.UUID, oldStatus, newStatus, reason string)
	PublishUserDeleted(ctx context.Context, userId uuid.UUID, email string)
}

// NatsPublisher implements Publisher using NATS
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

// NewNatsPublisher creates a new NATS-based event publisher
func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishUserRegistered emits USER_REGISTERED event for admin-created users
func (p *NatsPublisher) PublishUserRegistered(ctx context.Context, userId uuid.UUID, email, fullName, source string) {
	p.emit(ctx, "USER_REGISTERED", map[string]interface{}{
		"user_id":   userId,
		"email":     email,
		"full_name": fullName,
		"source":    source,
	})
}

// PublishUserStatusChanged emits USER_STATUS_CHANGED event
func (p *NatsPublisher) PublishUserStatusChanged(ctx context.Context, userId uuid.UUID, oldStatus, newStatus, reason string) {
	p.emit(ctx, "USER_STATUS_CHANGED", map[string]interface{}{
		"user_id":    userId,
		"old_status": oldStatus,
		"new_status": newStatus,
		"reason":     reason,
	})
}

// PublishUserDeleted emits USER_DELETED event
func (p *NatsPublisher) PublishUserDeleted(ctx context.Context, userId uuid.UUID, email string) {
	p.emit(ctx, "USER_DELETED", map[string]interface{}{
		"user_id": userId,
		"email":   email,
	})
}

func (p *NatsPublisher) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	now := time.Now()
	data["occurred_at"] = now
	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}

	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("ADMIN", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}
