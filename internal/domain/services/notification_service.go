package services

import (
	"context"
	"fmt"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// NotificationService delivers in-app notifications.
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	cache            CacheService
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, cache CacheService) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		cache:            cache,
	}
}

// NotifyParams describes one notification to deliver.
type NotifyParams struct {
	UserID     uuid.UUID
	Type       models.NotificationType
	Title      string
	Message    string
	EntityType models.EntityType
	EntityID   *uuid.UUID
}

// Notify persists a notification and invalidates the recipient's unread
// counter.
func (s *NotificationService) Notify(ctx context.Context, params NotifyParams) error {
	notification := &models.Notification{
		ID:         uuid.New(),
		UserID:     params.UserID,
		Type:       params.Type,
		Title:      params.Title,
		Message:    params.Message,
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	s.invalidateUnreadCount(ctx, params.UserID)
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params repositories.ListParams) ([]models.Notification, int64, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly, params)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, userID)
	return nil
}

// CountUnread serves the badge counter, cached briefly since it is hit
// on every page load.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := fmt.Sprintf(UnreadCountKeyPattern, userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var count int64
			if _, err := fmt.Sscanf(cached, "%d", &count); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, fmt.Sprint(count), CacheShortTerm)
	}
	return count, nil
}

func (s *NotificationService) invalidateUnreadCount(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, fmt.Sprintf(UnreadCountKeyPattern, userID))
	}
}
