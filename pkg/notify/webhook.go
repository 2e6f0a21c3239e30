package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// Default webhook delivery settings.
const (
	// DefaultWebhookTimeout is the maximum time for one delivery attempt,
	// covering connection, request, and response.
	DefaultWebhookTimeout = 10 * time.Second

	// DefaultWebhookMaxFailures is how many consecutive delivery failures
	// trip the guard breaker.
	DefaultWebhookMaxFailures = 3

	// DefaultWebhookCooldown is how long the guard breaker stays open
	// before probing the endpoint again.
	DefaultWebhookCooldown = 30 * time.Second
)

// Secret is a string type that prevents accidental logging of sensitive
// values such as webhook auth tokens. Its [Secret.String] and
// [Secret.GoString] methods return a redacted placeholder. Use
// [Secret.Value] to retrieve the actual secret.
type Secret string

// redacted is the placeholder string returned by Secret's string methods.
const redacted = "[REDACTED]"

// String returns "[REDACTED]" to prevent accidental logging of the secret.
func (s Secret) String() string {
	return redacted
}

// GoString returns "[REDACTED]" to prevent leakage via %#v formatting.
func (s Secret) GoString() string {
	return redacted
}

// Value returns the actual secret value.
func (s Secret) Value() string {
	return string(s)
}

// WebhookConfig holds the settings for a webhook notifier.
type WebhookConfig struct {
	// URL is the endpoint alerts are POSTed to. Required; must be an
	// http or https URL.
	URL string

	// AuthToken, when set, is sent as a bearer token in the
	// Authorization header.
	AuthToken Secret

	// Timeout bounds each delivery attempt. Zero selects
	// DefaultWebhookTimeout.
	Timeout time.Duration

	// MaxFailures is how many consecutive failures trip the guard
	// breaker. Zero selects DefaultWebhookMaxFailures.
	MaxFailures uint32

	// Cooldown is how long a tripped guard breaker stays open. Zero
	// selects DefaultWebhookCooldown.
	Cooldown time.Duration
}

// DefaultWebhookConfig returns a config with the default timeout and
// guard settings. The URL must still be set by the caller.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		Timeout:     DefaultWebhookTimeout,
		MaxFailures: DefaultWebhookMaxFailures,
		Cooldown:    DefaultWebhookCooldown,
	}
}

// Validate checks the config for usability. Returns the first problem
// found, or nil.
func (c WebhookConfig) Validate() error {
	if c.URL == "" {
		return sserr.Configuration("notify: webhook URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return sserr.Wrap(err, sserr.CategoryConfiguration,
			fmt.Sprintf("notify: invalid webhook URL %q", c.URL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return sserr.Configuration(
			fmt.Sprintf("notify: webhook URL scheme must be http or https, got %q", u.Scheme))
	}
	if c.Timeout < 0 {
		return sserr.Configuration("notify: webhook timeout must not be negative")
	}
	return nil
}

// webhookPayload is the JSON body POSTed to the endpoint.
type webhookPayload struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	SentAt   string `json:"sent_at"`
}

// Webhook delivers alerts as JSON POST requests. Deliveries run through
// a circuit breaker: after MaxFailures consecutive failures the endpoint
// is considered down and sends fail fast until the cooldown elapses.
type Webhook struct {
	config  WebhookConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewWebhook creates a webhook notifier. Returns a configuration error
// if the config is invalid.
func NewWebhook(cfg WebhookConfig) (*Webhook, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultWebhookTimeout
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultWebhookMaxFailures
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = DefaultWebhookCooldown
	}

	w := &Webhook{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	w.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "notify-webhook",
		Timeout: cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	})
	return w, nil
}

// Send POSTs the alert to the configured endpoint.
//
// Transport failures surface as network errors and non-2xx responses as
// external-service errors, so callers can feed delivery failures back
// into the same taxonomy they monitor everything else with. When the
// guard breaker is open, Send fails immediately with an external-service
// error without touching the network.
func (w *Webhook) Send(ctx context.Context, alert Alert) error {
	_, err := w.breaker.Execute(func() (any, error) {
		return nil, w.post(ctx, alert)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return sserr.ExternalService("webhook", err).
			WithContext("url", w.config.URL)
	}
	return err
}

func (w *Webhook) post(ctx context.Context, alert Alert) error {
	payload := webhookPayload{
		Type:     alert.Type,
		Message:  alert.Message,
		Severity: string(alert.Severity),
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return sserr.Wrap(err, sserr.CategoryServerError, "notify: encoding webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return sserr.Wrap(err, sserr.CategoryServerError, "notify: building webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if w.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+w.config.AuthToken.Value())
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return sserr.NetworkError(
			fmt.Sprintf("notify: webhook POST to %s failed", w.config.URL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return sserr.ExternalService("webhook", nil).
			WithContext("url", w.config.URL).
			WithContext("status", resp.StatusCode)
	}
	return nil
}
