// Package connectwise provides a client for the ConnectWise Manage
// service ticket API: paginated fetching of closed tickets by board and
// date window, plus per-ticket note retrieval. Authentication is a
// static header set computed once from the company id and API keys.
package connectwise

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/retry"
)

// Ensure Client implements the interface.
var _ driven.TicketSource = (*Client)(nil)

const (
	// DefaultPageSize is the number of tickets requested per page.
	DefaultPageSize = 250

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 60 * time.Second

	// MaxAttempts is the retry budget for each API call.
	MaxAttempts = 5

	// BackoffBase is the base wait of the exponential retry schedule.
	BackoffBase = 5 * time.Second

	// ProactiveRate caps outbound requests per second. ConnectWise
	// throttles aggressively on burst traffic.
	ProactiveRate = 4
)

// Config holds the static credentials and endpoint for the API.
type Config struct {
	// BaseURL is the API root, e.g.
	// https://api-na.myconnectwise.net/v4_6_release/apis/3.0
	BaseURL string

	// CompanyID, PublicKey and PrivateKey form the basic auth identity.
	CompanyID  string
	PublicKey  string
	PrivateKey string

	// ClientID is the registered integration client id header.
	ClientID string

	// PageSize overrides DefaultPageSize when positive.
	PageSize int

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// Client is a ConnectWise Manage API client with bounded retries and
// proactive rate limiting.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	clientID   string
	pageSize   int
	limiter    *rate.Limiter
	policy     retry.Policy
}

// NewClient creates a ConnectWise client from static credentials.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("connectwise: base URL is required")
	}
	if cfg.CompanyID == "" || cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("connectwise: company id and API keys are required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	auth := fmt.Sprintf("%s+%s:%s", cfg.CompanyID, cfg.PublicKey, cfg.PrivateKey)
	encoded := base64.StdEncoding.EncodeToString([]byte(auth))

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		authHeader: "Basic " + encoded,
		clientID:   cfg.ClientID,
		pageSize:   cfg.PageSize,
		limiter:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
	c.policy = retry.Policy{
		Name:        "connectwise",
		MaxAttempts: MaxAttempts,
		Backoff:     retry.Exponential(BackoffBase),
		Retryable:   retryable,
	}
	return c, nil
}

// PageSize returns the page size used by FetchPage.
func (c *Client) PageSize() int {
	return c.pageSize
}

// retryable retries connection/timeout failures and HTTP 429 only.
func retryable(err error) bool {
	return retry.IsTransient(err) || IsRateLimited(err)
}

// get performs a rate-limited, retried GET and returns the response body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", c.authHeader)
		req.Header.Set("clientId", c.clientID)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    string(data),
				URL:        url,
			}
		}

		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// decode unmarshals an API response body.
func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
