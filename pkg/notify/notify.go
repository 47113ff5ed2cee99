// Package notify sends transactional email through GC Notify.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Email is a templated message to one recipient.
type Email struct {
	To              string
	TemplateID      string
	Personalisation map[string]any
}

// Notifier delivers email.
type Notifier interface {
	SendEmail(ctx context.Context, e Email) error
}

// Nop logs and drops every email. Used when GC Notify is not configured.
type Nop struct{}

func (Nop) SendEmail(_ context.Context, e Email) error {
	zap.L().Info("notifications disabled; dropping email",
		zap.String("template", e.TemplateID),
	)
	return nil
}

// StatusError is a non-2xx response from GC Notify.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gcnotify: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Config configures a GCNotify client.
type Config struct {
	APIURL     string
	APIKey     string
	HTTPClient *http.Client
	// MaxElapsedTime bounds retries; zero uses 30s
	MaxElapsedTime time.Duration
	// InitialInterval is the first retry delay; zero uses 500ms
	InitialInterval time.Duration
}

// GCNotify posts emails to the GC Notify v2 API, retrying transport errors
// and 5xx responses with exponential backoff.
type GCNotify struct {
	config Config
	client *http.Client
}

// New creates a GC Notify client.
func New(config Config) *GCNotify {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if config.MaxElapsedTime == 0 {
		config.MaxElapsedTime = 30 * time.Second
	}
	if config.InitialInterval == 0 {
		config.InitialInterval = 500 * time.Millisecond
	}
	return &GCNotify{config: config, client: client}
}

type emailRequest struct {
	EmailAddress    string         `json:"email_address"`
	TemplateID      string         `json:"template_id"`
	Personalisation map[string]any `json:"personalisation,omitempty"`
}

func (g *GCNotify) SendEmail(ctx context.Context, e Email) error {
	if e.To == "" || e.TemplateID == "" {
		return errors.New("gcnotify: recipient and template are required")
	}
	body, err := json.Marshal(emailRequest{
		EmailAddress:    e.To,
		TemplateID:      e.TemplateID,
		Personalisation: e.Personalisation,
	})
	if err != nil {
		return err
	}
	endpoint := strings.TrimRight(g.config.APIURL, "/") + "/v2/notifications/email"

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.config.InitialInterval
	bo.MaxElapsedTime = g.config.MaxElapsedTime

	return backoff.RetryNotify(func() error {
		return g.post(ctx, endpoint, body)
	}, backoff.WithContext(bo, ctx), func(err error, wait time.Duration) {
		zap.L().Warn("retrying gcnotify request",
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
}

func (g *GCNotify) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "ApiKey-v1 "+g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return statusErr
	}
	return backoff.Permanent(statusErr)
}
