package model

import "time"

// Device is a registered push-notification target. The token is opaque
// to everything except the push gateway; for web push it is a
// JSON-encoded subscription. Devices are created on registration and
// deleted when the gateway reports the token permanently dead — there
// is no update path.
type Device struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserName  string    `json:"user_name,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
