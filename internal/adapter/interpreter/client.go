package interpreter

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
	"time"

	"github.com/polkiloo/foodbridge/internal/domain/model"
)

// HTTPClient asks the text interpretation service to read a donor note.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type request struct {
	Note     string    `json:"note"`
	PostedAt time.Time `json:"posted_at"`
}

// response mirrors JSON payload of the interpretation service.
type response struct {
	Description string     `json:"description"`
	PreparedAt  *time.Time `json:"prepared_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// NewHTTPClient creates an HTTP interpreter client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse interpreter url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("interpreter url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}, nil
}

// Interpret posts the note and decodes the structured answer.
func (c *HTTPClient) Interpret(ctx context.Context, note string, postedAt time.Time) (*model.NoteInterpretation, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/interpret")

	payload, err := json.Marshal(request{Note: note, PostedAt: postedAt})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("interpreter request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, fmt.Errorf("interpreter error: %s", resp.Status)
	}

	var data response
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}
	return &model.NoteInterpretation{
		Description: data.Description,
		PreparedAt:  utcPtr(data.PreparedAt),
		ExpiresAt:   utcPtr(data.ExpiresAt),
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}
