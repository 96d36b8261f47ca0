package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"golang.org/x/sync/errgroup"
)

// sendConcurrency bounds parallel deliveries within one multicast.
const sendConcurrency = 8

// Config holds VAPID configuration for the web push gateway.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// subscription is the decoded form of a device token: the JSON a
// browser's PushManager hands out.
type subscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// WebPushGateway sends multicasts over the Web Push protocol. Each
// token is delivered individually under the hood; the per-token results
// are collected into one MulticastResult.
type WebPushGateway struct {
	cfg Config
}

func NewWebPushGateway(cfg Config) *WebPushGateway {
	if cfg.Subscriber == "" {
		cfg.Subscriber = "mailto:noreply@wotohe.app"
	}
	return &WebPushGateway{cfg: cfg}
}

// VAPIDPublicKey returns the public key clients subscribe with.
func (g *WebPushGateway) VAPIDPublicKey() string {
	return g.cfg.VAPIDPublicKey
}

// SendMulticast delivers msg to every token concurrently and returns
// per-token results in token order. The whole-operation error is only
// used for marshal failures; delivery problems land in the results.
func (g *WebPushGateway) SendMulticast(ctx context.Context, msg Message) (*MulticastResult, error) {
	data, err := json.Marshal(payload{Title: msg.Title, Body: msg.Body})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	result := &MulticastResult{Responses: make([]SendResult, len(msg.Tokens))}

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(sendConcurrency)
	for i, token := range msg.Tokens {
		grp.Go(func() error {
			result.Responses[i] = g.sendOne(ctx, token, data)
			return nil
		})
	}
	grp.Wait()

	for _, r := range result.Responses {
		if r.Success {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}
	return result, nil
}

func (g *WebPushGateway) sendOne(ctx context.Context, token string, data []byte) SendResult {
	var sub subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil || sub.Endpoint == "" {
		return SendResult{
			Token: token,
			Code:  ErrorInvalidToken,
			Err:   fmt.Errorf("decode subscription: %w", err),
		}
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  g.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: g.cfg.VAPIDPrivateKey,
		Subscriber:      g.cfg.Subscriber,
		TTL:             86400,
	})
	if err != nil {
		return SendResult{Token: token, Code: ErrorUnavailable, Err: fmt.Errorf("send push: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return SendResult{
			Token: token,
			Code:  ErrorUnregistered,
			Err:   fmt.Errorf("push service returned %d", resp.StatusCode),
		}
	case resp.StatusCode >= 400:
		return SendResult{
			Token: token,
			Code:  ErrorUnavailable,
			Err:   fmt.Errorf("push service returned %d", resp.StatusCode),
		}
	}
	return SendResult{Token: token, Success: true}
}
