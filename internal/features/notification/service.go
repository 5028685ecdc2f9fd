package notification

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService interface {
	GetMemberNotifications(ctx context.Context, memberID primitive.ObjectID, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, memberID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id string, memberID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, memberID primitive.ObjectID) error
}

type NotificationServiceImpl struct {
	Repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) NotificationService {
	return &NotificationServiceImpl{Repo: repo}
}

func (s *NotificationServiceImpl) GetMemberNotifications(ctx context.Context, memberID primitive.ObjectID, page, limit int64) ([]Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.Repo.ListByMember(ctx, memberID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, memberID primitive.ObjectID) (int64, error) {
	return s.Repo.CountUnread(ctx, memberID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id string, memberID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	return s.Repo.MarkAsRead(ctx, oid, memberID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, memberID primitive.ObjectID) error {
	return s.Repo.MarkAllAsRead(ctx, memberID)
}
