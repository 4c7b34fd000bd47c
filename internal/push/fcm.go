package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"conocida/internal/platform/config"
)

// Dispatcher delivers one message to one device token.
type Dispatcher interface {
	Send(ctx context.Context, token string, msg Message) error
}

// FCMDispatcher talks to the FCM legacy HTTP API.
type FCMDispatcher struct {
	serverKey string
	endpoint  string
	appURL    string
	client    *http.Client
}

// NewFCMDispatcher returns nil when no server key is configured, which
// disables push entirely.
func NewFCMDispatcher(cfg config.PushConfig) *FCMDispatcher {
	if cfg.ServerKey == "" {
		return nil
	}
	return &FCMDispatcher{
		serverKey: cfg.ServerKey,
		endpoint:  cfg.Endpoint,
		appURL:    cfg.AppURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmNotification struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Icon        string `json:"icon"`
	ClickAction string `json:"click_action"`
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

func (d *FCMDispatcher) Send(ctx context.Context, token string, msg Message) error {
	payload, err := json.Marshal(fcmMessage{
		To: token,
		Notification: fcmNotification{
			Title:       msg.Title,
			Body:        msg.Body,
			Icon:        "/logo.jpg",
			ClickAction: d.appURL,
		},
		Data: msg.Data,
	})
	if err != nil {
		return fmt.Errorf("marshal fcm message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+d.serverKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fcm returned status %d", resp.StatusCode)
	}

	var body fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode fcm response: %w", err)
	}
	if body.Failure > 0 {
		reason := "unknown"
		if len(body.Results) > 0 && body.Results[0].Error != "" {
			reason = body.Results[0].Error
		}
		return fmt.Errorf("fcm rejected token: %s", reason)
	}
	return nil
}
