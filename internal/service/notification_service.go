package service

import (
	"errors"
	"sync"
	"time"

	"github.com/lucidpath/wellness-api/internal/config"
	"github.com/lucidpath/wellness-api/internal/database"
	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/logger"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/push"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	notificationService     *NotificationService
	notificationServiceOnce sync.Once
)

// NotificationService persists in-app notifications and delivers best-effort
// browser push. Neither a failed insert nor a failed push ever surfaces to
// the operation that triggered the notification.
type NotificationService struct {
	db        *gorm.DB
	logger    *zap.SugaredLogger
	transport push.Transport // nil disables push
}

// NewNotificationService returns the notification service singleton.
func NewNotificationService() *NotificationService {
	notificationServiceOnce.Do(func() {
		var transport push.Transport
		if config.GlobalConfig != nil && config.GlobalConfig.Push.Enabled() {
			transport = push.NewWebPushTransport()
		}
		notificationService = &NotificationService{
			db:        database.GetDB(),
			logger:    logger.GetSugaredLogger(),
			transport: transport,
		}
	})
	return notificationService
}

// Notify records a notification and kicks off push delivery. Self
// notifications (user actor equals recipient) are suppressed. Persistence
// errors are logged and absorbed.
func (s *NotificationService) Notify(n *model.Notification) {
	if n.ActorID != nil && n.ActorKind == model.ActorUser && *n.ActorID == n.RecipientID {
		return
	}

	if err := s.db.Create(n).Error; err != nil {
		s.logger.Errorf("persist notification failed: %v", err)
		return
	}

	go s.PushToUser(n.RecipientID, push.Message{
		Title: "Lucid Path",
		Body:  n.Message,
	})
}

// PushToUser sends one message to every subscription the member holds.
// Delivery is at most once: failures are logged, never retried. Gone
// subscriptions are removed. Returns true when at least one delivery
// succeeded.
func (s *NotificationService) PushToUser(userID uint, msg push.Message) bool {
	if s.transport == nil {
		return false
	}

	var subs []model.PushSubscription
	if err := s.db.Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		s.logger.Warnf("load push subscriptions failed: %v", err)
		return false
	}

	delivered := false
	for i := range subs {
		sub := subs[i]
		err := s.transport.Send(push.Subscription{
			Endpoint: sub.Endpoint,
			P256dh:   sub.P256dh,
			Auth:     sub.Auth,
		}, msg)
		switch {
		case err == nil:
			delivered = true
		case errors.Is(err, push.ErrSubscriptionGone):
			if err := s.db.Delete(&model.PushSubscription{}, sub.ID).Error; err != nil {
				s.logger.Warnf("remove stale subscription failed: %v", err)
			}
		default:
			s.logger.Warnf("push delivery to user %d failed: %v", userID, err)
		}
	}
	return delivered
}

// List pages through the caller's notifications, newest first.
func (s *NotificationService) List(userID uint, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	page, limit := normalizePage(req.Page, req.Limit)

	query := s.db.Model(&model.Notification{}).Where("recipient_id = ?", userID)
	if req.Unread != nil && *req.Unread {
		query = query.Where("`read` = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.Notification
	if err := query.Order("created_at DESC").
		Offset(offset(page, limit)).Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, toNotificationResponse(&notifications[i]))
	}
	return result, total, nil
}

// UnreadCount returns the badge count for the caller.
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&model.Notification{}).
		Where("recipient_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one of the caller's notifications as read. Ids belonging to
// another member are a silent no-op.
func (s *NotificationService) MarkRead(userID, id uint) error {
	return s.db.Model(&model.Notification{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("read", true).Error
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.db.Model(&model.Notification{}).
		Where("recipient_id = ? AND `read` = ?", userID, false).
		Update("read", true).Error
}

// Subscribe registers the caller's browser push subscription. A member holds
// one subscription at a time; re-subscribing replaces the stored endpoint
// and keys.
func (s *NotificationService) Subscribe(userID uint, req *dto.SubscribeRequest) error {
	sub := &model.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"endpoint", "p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
}

// Unsubscribe removes the caller's subscription. Removing when none exists
// is a no-op.
func (s *NotificationService) Unsubscribe(userID uint) error {
	return s.db.Where("user_id = ?", userID).
		Delete(&model.PushSubscription{}).Error
}

// VAPIDPublicKey returns the key browsers use to subscribe, or empty when
// push is not configured.
func (s *NotificationService) VAPIDPublicKey() string {
	if config.GlobalConfig == nil {
		return ""
	}
	return config.GlobalConfig.Push.VAPIDPublicKey
}

// CleanupRead deletes read notifications older than keepDays.
func (s *NotificationService) CleanupRead(keepDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -keepDays)
	result := s.db.Where("`read` = ? AND created_at < ?", true, cutoff).
		Delete(&model.Notification{})
	return result.RowsAffected, result.Error
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:          n.ID,
		Type:        n.Type,
		Message:     n.Message,
		ActorID:     n.ActorID,
		ActorKind:   n.ActorKind,
		ReferenceID: n.ReferenceID,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}
