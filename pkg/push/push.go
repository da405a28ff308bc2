package push

import (
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/lucidpath/wellness-api/internal/config"
)

// Message is the payload shown by the browser notification.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Subscription mirrors the browser PushSubscription object.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Transport delivers one push message to one subscription. Implementations
// must not retry: delivery is at most once.
type Transport interface {
	Send(sub Subscription, msg Message) error
}

// WebPushTransport sends messages through the Web Push protocol using VAPID
// keys from the configuration.
type WebPushTransport struct{}

// NewWebPushTransport builds the production transport.
func NewWebPushTransport() *WebPushTransport {
	return &WebPushTransport{}
}

// Send encrypts and posts the message to the subscription endpoint. A non-2xx
// status from the push service is an error; 404 and 410 mean the
// subscription is gone.
func (t *WebPushTransport) Send(sub Subscription, msg Message) error {
	cfg := config.GlobalConfig.Push
	if !cfg.Enabled() {
		return fmt.Errorf("push is not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      cfg.Subject,
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		TTL:             cfg.TTLSeconds,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrSubscriptionGone
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

// ErrSubscriptionGone signals that the push service no longer knows the
// subscription and it should be deleted.
var ErrSubscriptionGone = fmt.Errorf("push subscription gone")
