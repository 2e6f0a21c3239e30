package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// SendFunc delivers a formatted email. The actual transport (SMTP, a
// provider API, a queue) is the caller's responsibility.
type SendFunc func(ctx context.Context, to []string, subject, body string) error

// EmailConfig holds the settings for an email notifier.
type EmailConfig struct {
	// Recipients receive every alert. Required, at least one.
	Recipients []string

	// SubjectPrefix is prepended to every subject line, e.g. a service
	// name or environment tag. Optional.
	SubjectPrefix string
}

// Validate checks the config for usability.
func (c EmailConfig) Validate() error {
	if len(c.Recipients) == 0 {
		return sserr.Configuration("notify: email recipients are required")
	}
	for _, r := range c.Recipients {
		if !strings.Contains(r, "@") {
			return sserr.Configuration(
				fmt.Sprintf("notify: invalid email recipient %q", r))
		}
	}
	return nil
}

// Email formats alerts into subject and body text and hands them to an
// injected [SendFunc].
type Email struct {
	config EmailConfig
	send   SendFunc
}

// NewEmail creates an email notifier. Returns a configuration error if
// the config is invalid or send is nil.
func NewEmail(cfg EmailConfig, send SendFunc) (*Email, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if send == nil {
		return nil, sserr.Configuration("notify: email send function is required")
	}
	return &Email{config: cfg, send: send}, nil
}

// Send formats the alert and hands it to the send function.
func (e *Email) Send(ctx context.Context, alert Alert) error {
	subject := fmt.Sprintf("[%s] %s alert: %s",
		strings.ToUpper(string(alert.Severity)), alert.Type, firstLine(alert.Message))
	if e.config.SubjectPrefix != "" {
		subject = e.config.SubjectPrefix + " " + subject
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Alert type: %s\n", alert.Type)
	fmt.Fprintf(&body, "Severity:   %s\n", alert.Severity)
	fmt.Fprintf(&body, "Time:       %s\n\n", time.Now().UTC().Format(time.RFC3339))
	body.WriteString(alert.Message)
	body.WriteString("\n")

	return e.send(ctx, e.config.Recipients, subject, body.String())
}

// firstLine truncates a message to its first line for subject use.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
