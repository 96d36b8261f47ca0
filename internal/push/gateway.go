// Package push delivers chore notifications to registered devices and
// prunes registrations the push service no longer accepts.
package push

import "context"

// ErrorCode classifies a per-token send failure. Only permanent codes
// make a device eligible for deletion; transient failures (rate limits,
// network trouble) leave the registration alone.
type ErrorCode string

const (
	// ErrorUnregistered means the push service reports the token gone
	// for good (HTTP 404/410 for web push).
	ErrorUnregistered ErrorCode = "unregistered"
	// ErrorInvalidToken means the stored token could not be used at
	// all, e.g. it does not decode to a subscription.
	ErrorInvalidToken ErrorCode = "invalid-token"
	// ErrorUnavailable covers everything transient.
	ErrorUnavailable ErrorCode = "unavailable"
)

// Permanent reports whether the failure means the token will never
// work again.
func (c ErrorCode) Permanent() bool {
	return c == ErrorUnregistered || c == ErrorInvalidToken
}

// Message is one multicast notification: the same title and body for
// every token.
type Message struct {
	Title  string
	Body   string
	Tokens []string
}

// SendResult is the outcome for a single token, in Tokens order.
type SendResult struct {
	Token   string
	Success bool
	Code    ErrorCode
	Err     error
}

// MulticastResult aggregates the per-token outcomes of one send.
type MulticastResult struct {
	Responses    []SendResult
	SuccessCount int
	FailureCount int
}

// Gateway is the push transport. A multicast either fails as a whole
// (error return) or reports per-token results; individual token
// failures never fail the operation.
type Gateway interface {
	SendMulticast(ctx context.Context, msg Message) (*MulticastResult, error)
}
