package push

import "time"

// DeviceToken is one registered FCM token.
type DeviceToken struct {
	Token        string    `json:"token"`
	Platform     string    `json:"platform"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Message is one notification payload.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// TokenError reports a single failed delivery.
type TokenError struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

// Report summarizes a dispatch batch.
type Report struct {
	Sent   int          `json:"sent"`
	Failed int          `json:"failed"`
	Errors []TokenError `json:"errors,omitempty"`
}
