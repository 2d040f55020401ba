package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"
)

// Kind names a notification template of the notification service.
type Kind string

const (
	KindDonorAccepted         Kind = "donor_accepted"
	KindDonorExpired          Kind = "donor_expired"
	KindDonorAllocated        Kind = "donor_allocated"
	KindDonorRated            Kind = "donor_rated"
	KindReceiverOrderCreated  Kind = "receiver_order_created"
	KindReceiverStatusChanged Kind = "receiver_status_changed"
)

// Message is a single notification addressed to a user.
type Message struct {
	EventID     string    `json:"event_id"`
	Kind        Kind      `json:"kind"`
	RecipientID int64     `json:"recipient_id"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TooManyRequestsError represents a rate limiting signal from the notification service.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Sender delivers notification messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPSender posts messages to the notification service.
type HTTPSender struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSender creates an HTTP sender with default timeout.
func NewHTTPSender(baseURL string, logger *slog.Logger) (*HTTPSender, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse notifier url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("notifier url must be absolute")
	}
	return &HTTPSender{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Send posts msg. The event id doubles as idempotency key so redelivery is harmless.
func (c *HTTPSender) Send(ctx context.Context, msg Message) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/notifications")

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if msg.EventID != "" {
		req.Header.Set("Idempotency-Key", msg.EventID+":"+string(msg.Kind))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return TooManyRequestsError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("notification request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("kind", string(msg.Kind)),
			slog.String("body", string(body)))
		return fmt.Errorf("notifier error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		slog.String("kind", string(msg.Kind)),
		slog.Int64("recipient_id", msg.RecipientID),
		slog.String("subject", msg.Subject),
		slog.String("event_id", msg.EventID))
	return nil
}
