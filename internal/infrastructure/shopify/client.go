package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/ingestion"
)

const (
	// maxResponseSize caps how much of a response body we are willing to
	// read. A single Shopify page never comes close to this.
	maxResponseSize = 10 * 1024 * 1024

	// maxBackoff caps the exponential retry delay.
	maxBackoff = 30 * time.Second
)

// Client talks to the Shopify Admin REST API on behalf of a single shop.
// Construct one per tenant via NewClient or the Factory.
type Client struct {
	baseURL     string
	accessToken string
	config      Config
	httpClient  *http.Client
	logger      *zap.Logger
}

var _ ingestion.Platform = (*Client)(nil)

// NewClient creates a client bound to one shop's credentials.
func NewClient(shopDomain, accessToken string, config Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:     fmt.Sprintf("https://%s/admin/api/%s", shopDomain, config.APIVersion),
		accessToken: accessToken,
		config:      config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		logger: logger.With(zap.String("component", "shopify_client"), zap.String("shop_domain", shopDomain)),
	}
}

// Factory returns an ingestion.PlatformFactory that builds clients with the
// given shared configuration.
func Factory(config Config, logger *zap.Logger) ingestion.PlatformFactory {
	return func(shopDomain, accessToken string) ingestion.Platform {
		return NewClient(shopDomain, accessToken, config, logger)
	}
}

// FetchCustomers retrieves one page of customers. An empty cursor starts from
// the beginning; the returned page's cursor is empty on the last page.
func (c *Client) FetchCustomers(ctx context.Context, cursor string) (*ingestion.CustomerPage, error) {
	body, next, err := c.fetchPage(ctx, "customers", nil, cursor)
	if err != nil {
		return nil, err
	}

	var envelope customersEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode customers: %v", ingestion.ErrPlatformInvalidResponse, err)
	}

	page := &ingestion.CustomerPage{
		Customers: make([]ingestion.CustomerRecord, 0, len(envelope.Customers)),
		Cursor:    next,
		Raw:       body,
	}
	for _, payload := range envelope.Customers {
		page.Customers = append(page.Customers, payload.toRecord())
	}
	return page, nil
}

// FetchProducts retrieves one page of products.
func (c *Client) FetchProducts(ctx context.Context, cursor string) (*ingestion.ProductPage, error) {
	body, next, err := c.fetchPage(ctx, "products", nil, cursor)
	if err != nil {
		return nil, err
	}

	var envelope productsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode products: %v", ingestion.ErrPlatformInvalidResponse, err)
	}

	page := &ingestion.ProductPage{
		Products: make([]ingestion.ProductRecord, 0, len(envelope.Products)),
		Cursor:   next,
		Raw:      body,
	}
	for _, payload := range envelope.Products {
		page.Products = append(page.Products, payload.toRecord())
	}
	return page, nil
}

// FetchOrders retrieves one page of orders regardless of fulfillment status.
func (c *Client) FetchOrders(ctx context.Context, cursor string) (*ingestion.OrderPage, error) {
	body, next, err := c.fetchPage(ctx, "orders", url.Values{"status": {"any"}}, cursor)
	if err != nil {
		return nil, err
	}

	var envelope ordersEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode orders: %v", ingestion.ErrPlatformInvalidResponse, err)
	}

	page := &ingestion.OrderPage{
		Orders: make([]ingestion.OrderRecord, 0, len(envelope.Orders)),
		Cursor: next,
		Raw:    body,
	}
	for _, payload := range envelope.Orders {
		page.Orders = append(page.Orders, payload.toRecord())
	}
	return page, nil
}

// fetchPage performs one paginated GET with retries. It returns the raw body
// and the cursor for the following page, empty when this was the last one.
func (c *Client) fetchPage(ctx context.Context, resource string, filters url.Values, cursor string) ([]byte, string, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.config.PageSize))
	if cursor != "" {
		// Shopify rejects requests that combine page_info with any other
		// filter parameter.
		query.Set("page_info", cursor)
	} else {
		for key, values := range filters {
			for _, value := range values {
				query.Add(key, value)
			}
		}
	}
	endpoint := fmt.Sprintf("%s/%s.json?%s", c.baseURL, resource, query.Encode())

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff(attempt, lastErr)); err != nil {
				return nil, "", err
			}
		}

		body, next, err := c.doRequest(ctx, endpoint)
		if err == nil {
			return body, next, nil
		}
		if !isRetryable(err) {
			return nil, "", err
		}
		lastErr = err
		c.logger.Warn("shopify request failed, retrying",
			zap.String("resource", resource),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, "", lastErr
}

func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: create request: %v", ingestion.ErrPlatformRequestFailed, err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: %v", ingestion.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read response: %v", ingestion.ErrPlatformUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", fmt.Errorf("%w: HTTP %d", ingestion.ErrPlatformAuthFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, "", &rateLimitedError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return nil, "", fmt.Errorf("%w: HTTP %d", ingestion.ErrPlatformUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, "", fmt.Errorf("%w: HTTP %d: %s", ingestion.ErrPlatformRequestFailed, resp.StatusCode, truncate(body, 200))
	}

	return body, parseNextCursor(resp.Header.Get("Link")), nil
}

// rateLimitedError wraps ErrPlatformRateLimited and carries the server's
// Retry-After hint for the backoff calculation.
type rateLimitedError struct {
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", ingestion.ErrPlatformRateLimited, e.retryAfter)
}

func (e *rateLimitedError) Unwrap() error {
	return ingestion.ErrPlatformRateLimited
}

func isRetryable(err error) bool {
	return errors.Is(err, ingestion.ErrPlatformRateLimited) ||
		errors.Is(err, ingestion.ErrPlatformUnavailable)
}

func (c *Client) backoff(attempt int, lastErr error) time.Duration {
	var rateLimited *rateLimitedError
	if errors.As(lastErr, &rateLimited) && rateLimited.retryAfter > 0 {
		return rateLimited.retryAfter
	}

	delay := c.config.RetryBaseDelay << (attempt - 1)
	if delay > maxBackoff {
		delay = maxBackoff
	}
	// Full jitter up to half the delay spreads out retry storms.
	return delay + time.Duration(rand.Int63n(int64(delay)/2+1))
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// parseNextCursor extracts the page_info token for the next page from a
// Shopify Link header, e.g.
//
//	<https://shop.myshopify.com/admin/api/2024-01/orders.json?page_info=abc&limit=250>; rel="next"
func parseNextCursor(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if !strings.Contains(section[1], `rel="next"`) {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(section[0]), "<>")
		parsed, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return parsed.Query().Get("page_info")
	}
	return ""
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	// Shopify sends fractional seconds, e.g. "2.0".
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
