package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/bikestore/internal/config"
)

// Alert levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Message is a chat-style notification. Text is posted under the "text" key so
// Slack and Mattermost incoming webhooks render it as is.
type Message struct {
	Title  string         `json:"title,omitempty"`
	Text   string         `json:"text"`
	Level  string         `json:"level,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Notifier delivers operator alerts.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Nop drops every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }

// WebhookClient posts messages as JSON to an incoming webhook.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// New returns a WebhookClient for cfg.WebhookURL, or Nop when it is empty.
func New(cfg config.AlertsConfig) Notifier {
	if cfg.WebhookURL == "" {
		return Nop{}
	}
	return NewWebhookClient(cfg.WebhookURL)
}

// NewWebhookClient builds a resty-backed webhook client.
func NewWebhookClient(url string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &WebhookClient{
		httpClient: restyClient,
		url:        url,
	}
}

// apiError is the error body most webhook receivers return.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *WebhookClient) Notify(ctx context.Context, msg Message) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = resp.String()
		}
		return fmt.Errorf("webhook error: status=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
