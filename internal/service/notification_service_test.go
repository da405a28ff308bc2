package service

import (
	"errors"
	"testing"
	"time"

	"github.com/lucidpath/wellness-api/internal/dto"
	"github.com/lucidpath/wellness-api/internal/model"
	"github.com/lucidpath/wellness-api/pkg/push"
)

// fakeTransport records sends and fails per endpoint.
type fakeTransport struct {
	sent     []push.Subscription
	failWith map[string]error
}

func (f *fakeTransport) Send(sub push.Subscription, msg push.Message) error {
	f.sent = append(f.sent, sub)
	if err, ok := f.failWith[sub.Endpoint]; ok {
		return err
	}
	return nil
}

func subscribeEndpoint(t *testing.T, svc *NotificationService, userID uint, endpoint string) {
	t.Helper()
	req := &dto.SubscribeRequest{Endpoint: endpoint}
	req.Keys.P256dh = "p256dh-key"
	req.Keys.Auth = "auth-secret"
	if err := svc.Subscribe(userID, req); err != nil {
		t.Fatalf("Subscribe %s: %v", endpoint, err)
	}
}

func TestNotifySuppressesSelfNotification(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	user := createTestUser(t, db, "user@example.com")

	actorID := user.ID
	svc.Notify(&model.Notification{
		RecipientID: user.ID,
		ActorID:     &actorID,
		ActorKind:   model.ActorUser,
		Type:        model.NotificationForumReply,
		Message:     "you replied to yourself",
	})

	var count int64
	if err := db.Model(&model.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 0 {
		t.Errorf("self notification persisted, want suppressed")
	}
}

func TestNotifyProviderActorWithMatchingIDNotSuppressed(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	user := createTestUser(t, db, "user@example.com")

	// a provider whose id happens to equal the recipient's id is a
	// different account, not a self notification
	actorID := user.ID
	svc.Notify(&model.Notification{
		RecipientID: user.ID,
		ActorID:     &actorID,
		ActorKind:   model.ActorProvider,
		Type:        model.NotificationProviderMessage,
		Message:     "your appointment was confirmed",
	})

	var count int64
	if err := db.Model(&model.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 1 {
		t.Errorf("notifications = %d, want 1", count)
	}
}

func TestPushToUserDeliversToSubscription(t *testing.T) {
	db := newTestDB(t)
	transport := &fakeTransport{}
	svc := newTestNotificationService(db)
	svc.transport = transport
	user := createTestUser(t, db, "user@example.com")

	subscribeEndpoint(t, svc, user.ID, "https://push.example.com/alive")

	delivered := svc.PushToUser(user.ID, push.Message{Title: "Lucid Path", Body: "hello"})
	if !delivered {
		t.Errorf("delivered = false, want true")
	}
	if len(transport.sent) != 1 {
		t.Errorf("sends = %d, want 1", len(transport.sent))
	}
}

func TestPushToUserRemovesGoneSubscription(t *testing.T) {
	db := newTestDB(t)
	transport := &fakeTransport{failWith: map[string]error{
		"https://push.example.com/gone": push.ErrSubscriptionGone,
	}}
	svc := newTestNotificationService(db)
	svc.transport = transport
	user := createTestUser(t, db, "user@example.com")

	subscribeEndpoint(t, svc, user.ID, "https://push.example.com/gone")

	if delivered := svc.PushToUser(user.ID, push.Message{Title: "Lucid Path", Body: "hello"}); delivered {
		t.Errorf("delivered = true, want false")
	}

	var count int64
	if err := db.Model(&model.PushSubscription{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	if count != 0 {
		t.Errorf("subscriptions left = %d, want 0", count)
	}
}

func TestPushToUserAbsorbsTransportErrors(t *testing.T) {
	db := newTestDB(t)
	transport := &fakeTransport{failWith: map[string]error{
		"https://push.example.com/broken": errors.New("upstream 500"),
	}}
	svc := newTestNotificationService(db)
	svc.transport = transport
	user := createTestUser(t, db, "user@example.com")

	subscribeEndpoint(t, svc, user.ID, "https://push.example.com/broken")

	if delivered := svc.PushToUser(user.ID, push.Message{Body: "hello"}); delivered {
		t.Errorf("delivered = true, want false")
	}

	// the failing subscription is kept, only gone ones are removed
	var count int64
	if err := db.Model(&model.PushSubscription{}).Count(&count).Error; err != nil {
		t.Fatalf("count subscriptions: %v", err)
	}
	if count != 1 {
		t.Errorf("subscriptions = %d, want 1", count)
	}
}

func TestPushToUserWithoutTransport(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	user := createTestUser(t, db, "user@example.com")

	if delivered := svc.PushToUser(user.ID, push.Message{Body: "hello"}); delivered {
		t.Errorf("delivered = true with no transport configured")
	}
}

func TestSubscribeReplacesPreviousSubscription(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	user := createTestUser(t, db, "user@example.com")

	subscribeEndpoint(t, svc, user.ID, "https://push.example.com/old-browser")

	req := &dto.SubscribeRequest{Endpoint: "https://push.example.com/new-browser"}
	req.Keys.P256dh = "rotated-key"
	req.Keys.Auth = "rotated-secret"
	if err := svc.Subscribe(user.ID, req); err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}

	var subs []model.PushSubscription
	if err := db.Where("user_id = ?", user.ID).Find(&subs).Error; err != nil {
		t.Fatalf("load subscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(subs))
	}
	if subs[0].Endpoint != "https://push.example.com/new-browser" {
		t.Errorf("endpoint = %q, want the replacement", subs[0].Endpoint)
	}
	if subs[0].P256dh != "rotated-key" {
		t.Errorf("p256dh = %q, want rotated key", subs[0].P256dh)
	}
}

func TestUnsubscribeRemovesOwnSubscriptionOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	user := createTestUser(t, db, "user@example.com")
	other := createTestUser(t, db, "other@example.com")

	subscribeEndpoint(t, svc, user.ID, "https://push.example.com/mine")
	subscribeEndpoint(t, svc, other.ID, "https://push.example.com/theirs")

	if err := svc.Unsubscribe(user.ID); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	// removing again is a no-op
	if err := svc.Unsubscribe(user.ID); err != nil {
		t.Fatalf("repeat Unsubscribe: %v", err)
	}

	var subs []model.PushSubscription
	if err := db.Find(&subs).Error; err != nil {
		t.Fatalf("load subscriptions: %v", err)
	}
	if len(subs) != 1 || subs[0].UserID != other.ID {
		t.Fatalf("remaining subscriptions = %v, want only the other member's", subs)
	}
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	n := &model.Notification{
		RecipientID: owner.ID,
		ActorKind:   model.ActorUser,
		Type:        model.NotificationSystem,
		Message:     "welcome",
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("create notification: %v", err)
	}

	// another member marking someone else's notification is a silent no-op
	if err := svc.MarkRead(other.ID, n.ID); err != nil {
		t.Fatalf("MarkRead foreign id: %v", err)
	}
	var reloaded model.Notification
	if err := db.First(&reloaded, n.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Read {
		t.Errorf("foreign MarkRead flipped read, want untouched")
	}

	if err := svc.MarkRead(owner.ID, n.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := db.First(&reloaded, n.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Read {
		t.Errorf("read = false after owner MarkRead")
	}
}

func TestUnreadCountAndMarkAllRead(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	user := createTestUser(t, db, "user@example.com")

	for i := 0; i < 3; i++ {
		n := &model.Notification{
			RecipientID: user.ID,
			ActorKind:   model.ActorUser,
			Type:        model.NotificationSystem,
			Message:     "ping",
		}
		if err := db.Create(n).Error; err != nil {
			t.Fatalf("create notification: %v", err)
		}
	}

	count, err := svc.UnreadCount(user.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 3 {
		t.Errorf("unread = %d, want 3", count)
	}

	if err := svc.MarkAllRead(user.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	count, err = svc.UnreadCount(user.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 0 {
		t.Errorf("unread after MarkAllRead = %d, want 0", count)
	}
}

func TestCleanupReadKeepsRecentAndUnread(t *testing.T) {
	db := newTestDB(t)
	svc := newTestNotificationService(db)
	user := createTestUser(t, db, "user@example.com")

	old := time.Now().AddDate(0, 0, -60)
	rows := []struct {
		read      bool
		createdAt time.Time
	}{
		{read: true, createdAt: old},         // removed
		{read: false, createdAt: old},        // kept, still unread
		{read: true, createdAt: time.Now()},  // kept, recent
	}
	for _, row := range rows {
		n := &model.Notification{
			RecipientID: user.ID,
			ActorKind:   model.ActorUser,
			Type:        model.NotificationSystem,
			Message:     "ping",
			Read:        row.read,
		}
		if err := db.Create(n).Error; err != nil {
			t.Fatalf("create notification: %v", err)
		}
		if err := db.Model(n).UpdateColumn("created_at", row.createdAt).Error; err != nil {
			t.Fatalf("backdate notification: %v", err)
		}
	}

	removed, err := svc.CleanupRead(30)
	if err != nil {
		t.Fatalf("CleanupRead: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	var count int64
	if err := db.Model(&model.Notification{}).Count(&count).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 2 {
		t.Errorf("remaining = %d, want 2", count)
	}
}
