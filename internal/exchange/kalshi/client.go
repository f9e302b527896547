package kalshi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 4 << 20
)

// 接口统计标签
const (
	LabelListMarkets  = "GET /markets"
	LabelGetMarket    = "GET /markets/{ticker}"
	LabelGetBalance   = "GET /portfolio/balance"
	LabelGetPositions = "GET /portfolio/positions"
	LabelPlaceOrder   = "POST /portfolio/orders"
)

// CallRecorder 记录每次调用的耗时与是否失败
type CallRecorder interface {
	Record(label string, elapsed time.Duration, failed bool)
}

type nopRecorder struct{}

func (nopRecorder) Record(string, time.Duration, bool) {}

// Client Kalshi REST v2 客户端
type Client struct {
	baseURL    string
	pathPrefix string // 签名使用的路径前缀，例如 /trade-api/v2
	signer     *Signer
	httpClient *http.Client
	limiter    *rate.Limiter
	recorder   CallRecorder
	timeout    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithRecorder(r CallRecorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit rps <= 0 表示不限速
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewClient(rawURL string, signer *Signer, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid kalshi base URL: %s", rawURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	if signer == nil {
		signer = NewSigner("", "")
	}
	c := &Client{
		baseURL:    parsed.String(),
		pathPrefix: parsed.Path,
		signer:     signer,
		httpClient: &http.Client{},
		recorder:   nopRecorder{},
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// do 发送一次请求并记录统计，不做重试
func (c *Client) do(ctx context.Context, label, method, path string, query url.Values, body []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.recorder.Record(label, 0, true)
			return fmt.Errorf("kalshi %s: rate limiter: %w", label, err)
		}
	}
	start := time.Now()
	err := c.send(ctx, label, method, path, query, body, out)
	c.recorder.Record(label, time.Since(start), err != nil)
	return err
}

func (c *Client) send(ctx context.Context, label, method, path string, query url.Values, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("kalshi %s: build request: %w", label, err)
	}
	for k, v := range c.signer.Headers(method, c.pathPrefix+path, string(body)) {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kalshi %s: %w", label, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("kalshi %s: read response: %w", label, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Label: label, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("kalshi %s: decode response: %w", label, err)
	}
	return nil
}
