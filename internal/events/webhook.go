package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultWebhookTimeout is the default timeout for one webhook request
	DefaultWebhookTimeout = 10 * time.Second

	// DefaultWebhookRetryAttempts is the default number of delivery attempts
	DefaultWebhookRetryAttempts = 3

	// DefaultWebhookRetryDelay is the default delay between delivery attempts
	DefaultWebhookRetryDelay = time.Second
)

// WebhookConfig describes one webhook receiving registration notifications
type WebhookConfig struct {
	URL           string            `yaml:"url"`
	Headers       map[string]string `yaml:"headers,omitempty"`
	Timeout       time.Duration     `yaml:"timeout,omitempty"`
	RetryAttempts int               `yaml:"retryAttempts,omitempty"`
	RetryDelay    time.Duration     `yaml:"retryDelay,omitempty"`
}

// WebhookPayload is the JSON body posted to a webhook
type WebhookPayload struct {
	Event            string    `json:"event"`
	ServerInstanceID string    `json:"serverInstanceId"`
	ServerTemplateID string    `json:"serverTemplateId"`
	Timestamp        time.Time `json:"timestamp"`
}

// WebhookListener forwards DataSetRegistered events to an HTTP endpoint
type WebhookListener struct {
	config     WebhookConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewWebhookListener creates a webhook listener, applying defaults to unset fields
func NewWebhookListener(cfg WebhookConfig) (*WebhookListener, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultWebhookTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = DefaultWebhookRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultWebhookRetryDelay
	}
	return &WebhookListener{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}, nil
}

// Handle posts the event, retrying server errors and transport failures
func (w *WebhookListener) Handle(ctx context.Context, event DataSetRegistered) error {
	body, err := json.Marshal(WebhookPayload{
		Event:            "DataSetRegistered",
		ServerInstanceID: event.ServerInstanceID,
		ServerTemplateID: event.ServerTemplateID,
		Timestamp:        w.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, w.send(ctx, body)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(w.config.RetryDelay)),
		backoff.WithMaxTries(uint(w.config.RetryAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Webhook delivery failed, retrying",
				"url", w.config.URL,
				"retry_in", next,
				"error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", w.config.URL, err)
	}
	return nil
}

func (w *WebhookListener) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}
