package notification

import "context"

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// PushProvider delivers a push message to a set of device tokens.
// Implemented by FCMService; swapped for a mock in tests.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []DeviceToken, title, body string, data map[string]any) error
}
