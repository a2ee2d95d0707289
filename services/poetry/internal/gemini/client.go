// Package gemini is a minimal client for the Gemini generateContent endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/example/poetry-platform/services/poetry/internal/recommend"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 30 * time.Second
)

// ClientConfig holds the upstream settings. An empty APIKey makes every call
// fail with recommend.ErrAIUnavailable.
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// ProxyURL routes requests through an HTTP or SOCKS5 proxy when set.
	ProxyURL string
}

type Client struct {
	HTTPClient *http.Client
	Config     ClientConfig
	CB         *gobreaker.CircuitBreaker
	Log        *zap.Logger
}

// Option configures the Client.
type Option func(*Client)

func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) { c.CB = cb }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.Log = log }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

func New(cfg ClientConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		pu, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("gemini: invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(pu)
	}

	c := &Client{
		HTTPClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		Config:     cfg,
		Log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate sends instruction as a single user turn and returns the first
// candidate's first text part. A response without text yields "".
func (c *Client) Generate(ctx context.Context, instruction string) (string, error) {
	if c.Config.APIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", recommend.ErrAIUnavailable)
	}
	if c.CB == nil {
		return c.generate(ctx, instruction)
	}
	out, err := c.CB.Execute(func() (interface{}, error) {
		return c.generate(ctx, instruction)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.Log.Warn("gemini circuit open", zap.Error(err))
		}
		return "", err
	}
	return out.(string), nil
}

func (c *Client) endpoint() string {
	return c.Config.BaseURL + "/models/" + url.PathEscape(c.Config.Model) + ":generateContent?key=" + url.QueryEscape(c.Config.APIKey)
}

func (c *Client) generate(ctx context.Context, instruction string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: instruction}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// The url carries the key; never log or return it.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini: read body: %w", err)
	}
	c.Log.Debug("gemini response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", len(b)))

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}

	var out generateResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("gemini: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	if out.Error != nil {
		return "", fmt.Errorf("gemini: api error %d %s: %s", out.Error.Code, out.Error.Status, out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
