package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"DailyDigest/internal/config"
	"DailyDigest/internal/infrastructure/parser"
	"DailyDigest/internal/metrics"
	"DailyDigest/internal/ports"
)

// ErrAllBackendsFailed is returned when every configured backend failed once.
var ErrAllBackendsFailed = errors.New("all LLM backends failed")

const maxResponseBytes = 8 << 20

// Client implements ports.ChatClient over OpenAI-compatible chat-completion
// backends with ordered failover.
type Client struct {
	backends     []config.APIConfig
	extraBody    map[string]any
	extraHeaders map[string]string
	timeout      time.Duration

	cursor     *Cursor
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

var _ ports.ChatClient = (*Client)(nil)

// NewClient builds a client from configuration. Backends are tried in the
// order they are listed.
func NewClient(cfg config.LLMConfig, logger *slog.Logger, rec *metrics.Recorder) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		backends:     cfg.APIs,
		extraBody:    cfg.ExtraBody,
		extraHeaders: cfg.ExtraHeaders,
		timeout:      cfg.Timeout(),
		cursor:       NewCursor(len(cfg.APIs)),
		httpClient:   &http.Client{},
		logger:       logger,
		metrics:      rec,
	}
}

// Cursor exposes the failover position.
func (c *Client) Cursor() *Cursor {
	return c.cursor
}

// Complete sends a single user message and returns the model's text. Each
// backend is tried at most once, starting at the cursor.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || len(c.backends) == 0 {
		return "", fmt.Errorf("llm client misconfigured: no backends")
	}

	start := c.cursor.Current()
	var lastErr error
	for step := 0; step < len(c.backends); step++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		idx := (start + step) % len(c.backends)
		backend := c.backends[idx]

		began := time.Now()
		text, err := c.attempt(ctx, backend, prompt)
		c.metrics.LLMAttempt(idx, err == nil, time.Since(began))
		if err == nil {
			return text, nil
		}

		lastErr = err
		c.logger.Warn("llm backend failed",
			"backend", idx,
			"model", backend.Model,
			"error", err)
		c.cursor.Failed(idx)
	}

	return "", fmt.Errorf("%w: all %d backends failed, last error: %v", ErrAllBackendsFailed, len(c.backends), lastErr)
}

func (c *Client) attempt(ctx context.Context, backend config.APIConfig, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(c.requestBody(backend, prompt))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(backend.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if backend.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+backend.APIKey)
	}
	for k, v := range c.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	text := string(raw)
	c.logger.Debug("llm raw response", "model", backend.Model, "body", parser.Truncate(text, 500))

	if isEventStream(text) {
		return decodeEventStream(text)
	}

	content, found, err := decodeCompletion(text)
	if err != nil {
		return "", err
	}
	if !found {
		c.logger.Warn("llm response has no message content", "model", backend.Model)
	}
	return content, nil
}

func (c *Client) requestBody(backend config.APIConfig, prompt string) map[string]any {
	body := map[string]any{
		"model": backend.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.3,
		"top_p":       0.8,
		"stream":      false,
	}
	for k, v := range c.extraBody {
		body[k] = v
	}
	return body
}
