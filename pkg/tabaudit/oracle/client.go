package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout bounds one completion call. The upstream service has
	// no timeout of its own, so the client must supply one.
	DefaultTimeout = 60 * time.Second
)

// ClientConfig holds HTTP completion client settings.
type ClientConfig struct {
	// BaseURL is the OpenAI-compatible API root, e.g.
	// "https://api.openai.com/v1".
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Model overrides DefaultModel.
	Model string
	// Timeout overrides DefaultTimeout.
	Timeout time.Duration
	// Logger receives request/latency debug logs (nil = nop).
	Logger *zap.SugaredLogger
}

// Client calls an OpenAI-compatible chat-completions endpoint. One call per
// judgment, no retries; the call has no side effects so callers may retry
// on their own terms.
type Client struct {
	cfg  ClientConfig
	http *http.Client
	log  *zap.SugaredLogger
}

// NewClient returns a Client with config defaults applied.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete implements Completer over HTTP.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.BaseURL == "" {
		return "", errors.New("oracle endpoint not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	})
	if err != nil {
		return "", errors.Wrap(err, "encode completion request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build completion request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "completion request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, "read completion response")
	}
	c.log.Debugw("completion call",
		"model", c.cfg.Model,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("completion endpoint returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", errors.Wrap(err, "decode completion response")
	}
	if parsed.Error != nil {
		return "", errors.Newf("completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
