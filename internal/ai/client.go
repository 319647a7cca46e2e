// Package ai submits inspection output to the Anthropic Messages API
// and relays the streamed reply over the event bus: one analysis.token
// event per text delta, then analysis.done carrying the full
// accumulated response.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"podscope/internal/config"
	"podscope/internal/events"
	"podscope/pkg/logging"
)

const anthropicVersion = "2023-06-01"

// Client talks to the analysis service. One Client is shared by all
// analysis runs; each call streams independently.
type Client struct {
	cfg        config.AIConfig
	bus        *events.Bus
	httpClient *http.Client
}

// NewClient creates an analysis client publishing on the given bus.
func NewClient(cfg config.AIConfig, bus *events.Bus) *Client {
	return &Client{
		cfg: cfg,
		bus: bus,
		httpClient: &http.Client{
			// No overall timeout: the response is an open SSE stream.
			// Cancellation comes from the request context.
			Timeout: 0,
		},
	}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamEvent is the subset of the SSE data payload we care about:
// content_block_delta events carry delta.text.
type streamEvent struct {
	Delta struct {
		Text string `json:"text"`
	} `json:"delta"`
}

// Analyze submits output text for the given mode ("logs" or
// "describe") and streams the reply onto the bus. It blocks until the
// stream ends, so callers run it on their own goroutine; the returned
// error covers request-level failures only (missing key, transport,
// non-2xx status).
func (c *Client) Analyze(ctx context.Context, output, mode string) error {
	apiKey := os.Getenv(c.cfg.APIKeyEnv)
	if apiKey == "" {
		return fmt.Errorf("%s not set", c.cfg.APIKeyEnv)
	}

	reqBody := messageRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Stream:    true,
		Messages:  []message{{Role: "user", Content: buildPrompt(output, mode)}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encoding analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building analysis request: %w", err)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := readLimited(resp)
		return fmt.Errorf("analysis request failed: %s: %s", resp.Status, strings.TrimSpace(body))
	}

	var buffer strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		if strings.TrimSpace(data) == "[DONE]" {
			break
		}
		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}
		if ev.Delta.Text != "" {
			buffer.WriteString(ev.Delta.Text)
			c.bus.Publish(events.TopicAnalysisToken, ev.Delta.Text)
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading analysis stream: %w", err)
	}

	logging.Debug("AI", "analysis stream finished in %s (%d bytes)", time.Since(started).Round(time.Millisecond), buffer.Len())
	c.bus.Publish(events.TopicAnalysisDone, buffer.String())
	return nil
}

func readLimited(resp *http.Response) (string, error) {
	buf := make([]byte, 2048)
	n, err := resp.Body.Read(buf)
	return string(buf[:n]), err
}
