package machine

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenFetcher fetches a session token from the local endpoint.
type TokenFetcher interface {
	FetchToken(ctx context.Context) (string, error)
}

// Completer sends a chat completion request.
type Completer interface {
	Complete(ctx context.Context, token string, req Request) (string, error)
}

var (
	_ TokenFetcher = (*Client)(nil)
	_ Completer    = (*Client)(nil)
)

// Client talks to the token endpoint and the chat completion API.
type Client struct {
	tokenURL  *url.URL
	endpoint  *url.URL
	model     string
	http      *http.Client
	userAgent string
}

const (
	defaultTokenHost = "https://localhost"
	defaultEndpoint  = "https://api.openai.com/v1"
	defaultUserAgent = "multilogue/0.1"

	errorBodyLimit = 200
	maxBodyBytes   = 4 << 20
)

// NewClient builds a Client. Requests carry no timeout of their own; callers
// bound them with the context.
func NewClient(opts Options) (*Client, error) {
	tokenURL, err := buildTokenURL(opts.TokenHost, opts.TokenPath)
	if err != nil {
		return nil, err
	}
	endpoint, err := parseBaseURL(opts.Endpoint, defaultEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", opts.Endpoint, err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // local self-signed token host
	}
	return &Client{
		tokenURL:  tokenURL,
		endpoint:  endpoint,
		model:     strings.TrimSpace(opts.Model),
		http:      &http.Client{Transport: transport},
		userAgent: defaultUserAgent,
	}, nil
}

// TokenURL returns the URL FetchToken requests.
func (c *Client) TokenURL() string {
	return c.tokenURL.String()
}

// Model returns the configured default model.
func (c *Client) Model() string {
	return c.model
}

// FetchToken GETs the token URL and returns the trimmed body. Non-2xx
// responses yield a *StatusError.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tokenURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	body, status, err := c.send(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	if status < 200 || status > 299 {
		return "", &StatusError{Op: "fetch token", Status: status, Body: snippet(body)}
	}
	return strings.TrimSpace(string(body)), nil
}

// Complete posts req to <endpoint>/chat/completions and returns the first
// choice's content, trimmed.
func (c *Client) Complete(ctx context.Context, token string, chat Request) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	if chat.Model == "" {
		chat.Model = c.model
	}
	payload, err := json.Marshal(chat)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	reqURL := c.endpoint.JoinPath("chat", "completions")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	body, status, err := c.send(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if status >= 400 {
		return "", &StatusError{Op: "chat completion", Status: status, Body: snippet(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func snippet(body []byte) string {
	if len(body) > errorBodyLimit {
		body = body[:errorBodyLimit]
	}
	return strings.TrimSpace(string(body))
}

func buildTokenURL(host, path string) (*url.URL, error) {
	base, err := parseBaseURL(host, defaultTokenHost)
	if err != nil {
		return nil, fmt.Errorf("parse token host %q: %w", host, err)
	}
	rel, err := url.Parse(strings.TrimLeft(strings.TrimSpace(path), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse token path %q: %w", path, err)
	}
	base.Path = "/"
	return base.ResolveReference(rel), nil
}

func parseBaseURL(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
