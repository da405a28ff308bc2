package model

// Notification types.
const (
	NotificationForumReply      = "forum_reply"
	NotificationForumThread     = "forum_thread"
	NotificationProviderMessage = "provider_message"
	NotificationSystem          = "system"
)

// Actor kinds for notifications.
const (
	ActorUser     = "user"
	ActorProvider = "provider"
)

// Notification is an in-app notification for a member. ActorKind says which
// table ActorID points at.
type Notification struct {
	Base
	RecipientID uint   `gorm:"not null;index" json:"recipient_id"`
	ActorID     *uint  `gorm:"index" json:"actor_id"`
	ActorKind   string `gorm:"type:varchar(20);not null;default:'user'" json:"actor_kind"`
	Type        string `gorm:"type:varchar(30);not null;index" json:"type"`
	ReferenceID *uint  `gorm:"index" json:"reference_id"`
	Message     string `gorm:"type:varchar(500);not null" json:"message"`
	Read        bool   `gorm:"not null;default:false;index" json:"read"`

	Recipient User `gorm:"foreignKey:RecipientID" json:"-"`
}

// TableName sets the notifications table name.
func (Notification) TableName() string {
	return "notifications"
}

// PushSubscription stores the browser push endpoint for a member. Each
// member holds at most one; a new subscription replaces the old one.
type PushSubscription struct {
	Base
	UserID   uint   `gorm:"not null;uniqueIndex" json:"user_id"`
	Endpoint string `gorm:"type:varchar(500);not null" json:"endpoint"`
	P256dh   string `gorm:"type:varchar(255);not null" json:"-"`
	Auth     string `gorm:"type:varchar(255);not null" json:"-"`
}

// TableName sets the push subscriptions table name.
func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
