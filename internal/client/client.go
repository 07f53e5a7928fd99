// Package client talks to a running ORAM server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultServerURL = "http://127.0.0.1:3000"
	httpTimeout      = 30 * time.Second
)

// Message is one attributed line in a multi-agent reply.
type Message struct {
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

// Reply is the server's answer to a command. Exactly one of Response or
// Messages is set, depending on whether multi-agent mode is on.
type Reply struct {
	Response string    `json:"response,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Text renders the reply as plain text, prefixing speakers when present.
func (r Reply) Text() string {
	if len(r.Messages) == 0 {
		return r.Response
	}
	lines := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		lines = append(lines, fmt.Sprintf("[%s] %s", m.Agent, m.Text))
	}
	return strings.Join(lines, "\n")
}

// Health is the server's health report.
type Health struct {
	Status   string  `json:"status"`
	Version  string  `json:"version"`
	Uptime   float64 `json:"uptime"`
	Provider string  `json:"provider"`
}

// Client talks to the ORAM server.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty URL falls back to ORAM_URL,
// then http://127.0.0.1:3000.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("ORAM_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: strings.TrimRight(serverURL, "/"),
	}
}

// URL returns the server base URL.
func (c *Client) URL() string {
	return c.serverURL
}

// Ask posts a command. forcedSpeaker may be empty.
func (c *Client) Ask(ctx context.Context, command, forcedSpeaker string) (Reply, error) {
	body, err := json.Marshal(map[string]string{
		"command":        command,
		"forced_speaker": forcedSpeaker,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("marshal command: %w", err)
	}

	data, err := c.Post(ctx, "/", body)
	if err != nil {
		return Reply{}, err
	}

	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return Reply{}, fmt.Errorf("decode reply: %w", err)
	}
	return reply, nil
}

// Health fetches the health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	data, err := c.Get(ctx, "/api/health")
	if err != nil {
		return Health{}, err
	}
	var h Health
	if err := json.Unmarshal(data, &h); err != nil {
		return Health{}, fmt.Errorf("decode health: %w", err)
	}
	return h, nil
}

// Post sends a POST request with JSON body. Returns response body.
func (c *Client) Post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.serverURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "POST", path)
}

// Get sends a GET request. Returns response body.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.serverURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return c.do(req, "GET", path)
}

func (c *Client) do(req *http.Request, method, path string) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	return data, nil
}
