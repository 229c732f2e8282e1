// Package price fetches historical spot prices for assets missing them
// in the ledger.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/eprbell/rp2go/internal/amount"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the default price service endpoint.
	DefaultBaseURL = "https://min-api.cryptocompare.com/data"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 10 requests per second, the documented free-tier cap.
	RateLimit = 10.0
)

// Client errors.
var (
	ErrHTTPStatus   = errors.New("price service returned unexpected status")
	ErrUnknownAsset = errors.New("price service does not know the asset")
	ErrBadResponse  = errors.New("price service returned a malformed response")
)

// Client is a rate-limited HTTP client for a historical price service.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the service endpoint. For tests and self-hosted
// mirrors.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = h
	}
}

// NewClient creates a price client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Spot returns the asset's price in the given fiat currency at the given
// time. Requests are rate limited; ctx cancels both the wait and the
// request.
func (c *Client) Spot(ctx context.Context, asset, fiat string, at time.Time) (amount.Amount, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return amount.Zero(), fmt.Errorf("waiting for rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("fsym", asset)
	q.Set("tsyms", fiat)
	q.Set("ts", strconv.FormatInt(at.UTC().Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pricehistorical?"+q.Encode(), nil)
	if err != nil {
		return amount.Zero(), fmt.Errorf("building request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return amount.Zero(), fmt.Errorf("fetching spot price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return amount.Zero(), fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return amount.Zero(), fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	// Error payloads come back as {"Response":"Error","Message":...}.
	if msg, ok := raw["Response"]; ok {
		var status string
		if json.Unmarshal(msg, &status) == nil && status == "Error" {
			var detail string
			if m, ok := raw["Message"]; ok {
				_ = json.Unmarshal(m, &detail)
			}
			return amount.Zero(), fmt.Errorf("%w: %s (%s)", ErrUnknownAsset, asset, detail)
		}
	}

	assetPayload, ok := raw[asset]
	if !ok {
		return amount.Zero(), fmt.Errorf("%w: missing %q key", ErrBadResponse, asset)
	}
	var prices map[string]json.Number
	if err := json.Unmarshal(assetPayload, &prices); err != nil {
		return amount.Zero(), fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	num, ok := prices[fiat]
	if !ok {
		return amount.Zero(), fmt.Errorf("%w: missing %q price", ErrBadResponse, fiat)
	}

	spot, err := amount.Parse(num.String())
	if err != nil {
		return amount.Zero(), fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !spot.IsPositive() {
		return amount.Zero(), fmt.Errorf("%w: non-positive price %s", ErrBadResponse, spot)
	}
	return spot, nil
}
