package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/lms-notify/internal/models"
	"github.com/noah-isme/lms-notify/pkg/config"
)

// PushGateway delivers a push payload to every subscription of a user.
// Multi-subscription fan-out per user is the gateway's concern, not ours.
type PushGateway interface {
	SendPush(ctx context.Context, userID string, msg models.PushMessage) error
}

// HTTPPushGateway talks to the platform's push delivery service.
type HTTPPushGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPPushGateway constructs the client from config.
func NewHTTPPushGateway(cfg config.PushConfig) *HTTPPushGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPushGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type pushRequest struct {
	UserID string            `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// SendPush posts the payload to the push service. Any non-2xx response is a
// catchable delivery failure.
func (g *HTTPPushGateway) SendPush(ctx context.Context, userID string, msg models.PushMessage) error {
	body, err := json.Marshal(pushRequest{
		UserID: userID,
		Title:  msg.Title,
		Body:   msg.Body,
		Data:   msg.Data,
	})
	if err != nil {
		return fmt.Errorf("encode push request: %w", err)
	}

	endpoint, err := url.JoinPath(g.baseURL, "v1", "push")
	if err != nil {
		return fmt.Errorf("build push endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	// Drain so keep-alive connections are reusable across the fan-out.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}
