package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"crowdfund-be/internal/model"
	"crowdfund-be/internal/pkg/logger"
	"crowdfund-be/internal/pkg/mailer"
	"crowdfund-be/internal/repository"
	"crowdfund-be/pkg/events"
	pktNats "crowdfund-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	email      mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	sub *pktNats.Subscriber,
	delivery NotificationDelivery,
	email mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		email:      email,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// Strip "events." prefix from type if present (NATS subject includes stream name)
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	payload := event.Payload()

	s.logger.Info("NotificationService", "Processing event: "+typeCode, map[string]interface{}{"type": typeCode})

	switch typeCode {
	case events.TypeProjectFunded:
		return s.broadcastProjectFunded(payload)
	case events.TypeSystemBroadcast:
		return s.broadcastSystem(payload)
	}

	userID, ok := payloadUserId(payload)
	if !ok {
		// Admin user management events carry no contribution recipient.
		return nil
	}

	var title, message string
	sendReceipt := false
	sendRefundNotice := false

	switch typeCode {
	case events.TypeContributionCreated:
		title = "Contribution received"
		message = fmt.Sprintf("Your contribution of %v is awaiting payment.", payload["amount"])
	case events.TypeContributionPaid:
		title = "Payment confirmed"
		message = fmt.Sprintf("Your contribution of %v has been paid. Thank you!", payload["amount"])
		sendReceipt = true
	case events.TypeContributionFailed:
		title = "Payment failed"
		message = "Your contribution payment failed."
		if reason, ok := payload["failure_reason"].(string); ok && reason != "" {
			message = fmt.Sprintf("Your contribution payment failed: %s. You can retry the payment.", reason)
		}
	case events.TypeContributionRefunded:
		title = "Contribution refunded"
		message = fmt.Sprintf("Your contribution of %v has been refunded.", payload["amount"])
		sendRefundNotice = true
	default:
		return nil
	}

	metaJSON, _ := json.Marshal(payload)
	notif := model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TypeCode:  typeCode,
		Title:     title,
		Message:   message,
		Metadata:  datatypes.JSON(metaJSON),
		CreatedAt: time.Now(),
		IsRead:    false,
	}

	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return err // NATS will retry if we return error
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}

	if sendReceipt {
		s.sendReceiptEmail(ctx, userID, payload)
	}
	if sendRefundNotice {
		s.sendRefundEmail(ctx, userID, payload)
	}
	return nil
}

// broadcastProjectFunded pushes a site-wide banner; it is not stored per
// user because it has no single recipient.
func (s *NotificationService) broadcastProjectFunded(payload map[string]interface{}) error {
	if s.delivery == nil {
		return nil
	}

	title, _ := payload["title"].(string)
	metaJSON, _ := json.Marshal(payload)
	s.delivery.Broadcast(model.Notification{
		ID:        uuid.New(),
		TypeCode:  events.TypeProjectFunded,
		Title:     "Project fully funded",
		Message:   fmt.Sprintf("%s has reached its funding target!", title),
		Metadata:  datatypes.JSON(metaJSON),
		CreatedAt: time.Now(),
	})
	return nil
}

// broadcastSystem relays an admin announcement to every connected client.
func (s *NotificationService) broadcastSystem(payload map[string]interface{}) error {
	if s.delivery == nil {
		return nil
	}

	title, _ := payload["title"].(string)
	message, _ := payload["message"].(string)
	metaJSON, _ := json.Marshal(payload)
	s.delivery.Broadcast(model.Notification{
		ID:        uuid.New(),
		TypeCode:  events.TypeSystemBroadcast,
		Title:     title,
		Message:   message,
		Metadata:  datatypes.JSON(metaJSON),
		CreatedAt: time.Now(),
	})
	return nil
}

func (s *NotificationService) sendReceiptEmail(ctx context.Context, userID uuid.UUID, payload map[string]interface{}) {
	if s.email == nil {
		return
	}
	user, err := s.repo.GetUserById(ctx, userID)
	if err != nil || user == nil {
		return
	}

	amount, _ := payload["amount"].(float64)
	reference, _ := payload["contribution_id"].(string)
	if err := s.email.SendPaymentReceipt(user.Email, user.FullName, "your project", amount, reference); err != nil {
		s.logger.Warn("NotificationService", "Failed to send receipt email", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (s *NotificationService) sendRefundEmail(ctx context.Context, userID uuid.UUID, payload map[string]interface{}) {
	if s.email == nil {
		return
	}
	user, err := s.repo.GetUserById(ctx, userID)
	if err != nil || user == nil {
		return
	}

	amount, _ := payload["amount"].(float64)
	reason, _ := payload["reason"].(string)
	if err := s.email.SendRefundNotice(user.Email, user.FullName, "your project", amount, reason); err != nil {
		s.logger.Warn("NotificationService", "Failed to send refund email", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func payloadUserId(payload map[string]interface{}) (uuid.UUID, bool) {
	if uidStr, ok := payload["user_id"].(string); ok {
		if uid, err := uuid.Parse(uidStr); err == nil {
			return uid, true
		}
	}
	return uuid.Nil, false
}

// GetNotifications fetches notifications for a user.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

// GetUnreadCount fetches unread count.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks a notification as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
