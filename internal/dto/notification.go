package dto

// NotificationListRequest pages through the caller's notifications.
type NotificationListRequest struct {
	Page   int   `form:"page" binding:"omitempty,min=1"`
	Limit  int   `form:"limit" binding:"omitempty,min=1"`
	Unread *bool `form:"unread"`
}

// NotificationResponse is one notification.
type NotificationResponse struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Message     string `json:"message"`
	ActorID     *uint  `json:"actor_id,omitempty"`
	ActorKind   string `json:"actor_kind"`
	ReferenceID *uint  `json:"reference_id,omitempty"`
	Read        bool   `json:"read"`
	CreatedAt   string `json:"created_at"`
}

// UnreadCountResponse carries the unread badge count.
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// SubscribeRequest registers a browser push subscription.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// VAPIDKeyResponse exposes the public key the browser needs to subscribe.
type VAPIDKeyResponse struct {
	PublicKey string `json:"public_key"`
}
