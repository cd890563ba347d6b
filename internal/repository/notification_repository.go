package repository

import (
	"context"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/model"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *model.Notification) error
	GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error

	// Helpers to resolve recipients and email targets.
	GetUsersByRole(ctx context.Context, role string) ([]*entity.User, error)
	GetUserById(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}
