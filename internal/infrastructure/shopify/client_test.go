package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/domain/ingestion"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	cfg.RetryBaseDelay = time.Millisecond
	cfg.PageSize = 50
	return cfg
}

// testClient points a Client at an httptest server instead of a real shop.
func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	return &Client{
		baseURL:     server.URL + "/admin/api/2024-01",
		accessToken: "shpat_test",
		config:      testConfig(),
		httpClient:  server.Client(),
		logger:      zap.NewNop(),
	}
}

func TestClient_FetchCustomers_Pagination(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "/admin/api/2024-01/customers.json", r.URL.Path)

		if r.URL.Query().Get("page_info") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/admin/api/2024-01/customers.json?page_info=cursor-2&limit=50>; rel="next"`, "https://acme.myshopify.com"))
			fmt.Fprint(w, `{"customers":[
				{"id":101,"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","total_spent":"1200.50"},
				{"id":102,"first_name":"Alan","last_name":"Turing","email":"alan@example.com","total_spent":"80.00"}
			]}`)
			return
		}
		assert.Equal(t, "cursor-2", r.URL.Query().Get("page_info"))
		fmt.Fprint(w, `{"customers":[{"id":103,"first_name":"Grace","last_name":"Hopper","email":"grace@example.com","total_spent":"9.99"}]}`)
	}))
	defer server.Close()

	client := testClient(t, server)

	first, err := client.FetchCustomers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, first.Customers, 2)
	assert.Equal(t, "101", first.Customers[0].ExternalID)
	assert.Equal(t, "Ada", first.Customers[0].FirstName)
	assert.True(t, first.Customers[0].TotalSpent.Equal(decimal.RequireFromString("1200.50")))
	assert.Equal(t, "cursor-2", first.Cursor)
	assert.NotEmpty(t, first.Raw)

	second, err := client.FetchCustomers(context.Background(), first.Cursor)
	require.NoError(t, err)
	require.Len(t, second.Customers, 1)
	assert.Equal(t, "103", second.Customers[0].ExternalID)
	assert.Empty(t, second.Cursor, "last page carries no next cursor")

	require.Len(t, requests, 2)
}

func TestClient_FetchCustomers_CoercesBadMoney(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"customers":[
			{"id":1,"first_name":"A","last_name":"B","email":"a@b.com","total_spent":"not-a-number"},
			{"id":2,"first_name":"C","last_name":"D","email":"c@d.com","total_spent":""}
		]}`)
	}))
	defer server.Close()

	page, err := testClient(t, server).FetchCustomers(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Customers, 2)
	assert.True(t, page.Customers[0].TotalSpent.IsZero())
	assert.True(t, page.Customers[1].TotalSpent.IsZero())
}

func TestClient_FetchProducts_FirstVariantPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/products.json", r.URL.Path)
		fmt.Fprint(w, `{"products":[
			{"id":11,"title":"Desk Lamp","variants":[{"price":"35.00"},{"price":"45.00"}]},
			{"id":12,"title":"No Variants","variants":[]}
		]}`)
	}))
	defer server.Close()

	page, err := testClient(t, server).FetchProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, "Desk Lamp", page.Products[0].Title)
	assert.True(t, page.Products[0].Price.Equal(decimal.RequireFromString("35.00")))
	assert.True(t, page.Products[1].Price.IsZero())
}

func TestClient_FetchOrders_CustomerReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "any", r.URL.Query().Get("status"))
		fmt.Fprint(w, `{"orders":[
			{"id":5001,"total_price":"99.95","currency":"USD","customer":{"id":101},"created_at":"2026-08-01T10:30:00Z"},
			{"id":5002,"total_price":"10.00","currency":"EUR","customer":null,"created_at":"2026-08-02T08:00:00Z"}
		]}`)
	}))
	defer server.Close()

	page, err := testClient(t, server).FetchOrders(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)

	require.NotNil(t, page.Orders[0].CustomerExternalID)
	assert.Equal(t, "101", *page.Orders[0].CustomerExternalID)
	assert.Equal(t, "USD", page.Orders[0].Currency)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC), page.Orders[0].PlacedAt)

	assert.Nil(t, page.Orders[1].CustomerExternalID, "guest checkout has no customer reference")
}

func TestClient_FetchOrders_CursorDropsFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("status"), "page_info requests must not repeat filters")
		assert.Equal(t, "abc", r.URL.Query().Get("page_info"))
		fmt.Fprint(w, `{"orders":[]}`)
	}))
	defer server.Close()

	page, err := testClient(t, server).FetchOrders(context.Background(), "abc")
	require.NoError(t, err)
	assert.Empty(t, page.Orders)
}

func TestClient_AuthFailureIsNotRetried(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := testClient(t, server).FetchCustomers(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrPlatformAuthFailed)
	assert.Equal(t, 1, attempts)
}

func TestClient_RateLimitRetriesThenSucceeds(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"customers":[{"id":1,"first_name":"A","last_name":"B","email":"a@b.com","total_spent":"1.00"}]}`)
	}))
	defer server.Close()

	page, err := testClient(t, server).FetchCustomers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, page.Customers, 1)
	assert.Equal(t, 2, attempts)
}

func TestClient_RateLimitExhaustsRetries(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(t, server).FetchCustomers(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrPlatformRateLimited)
	assert.Equal(t, testConfig().MaxRetries+1, attempts)
}

func TestClient_ServerErrorsAreRetried(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(t, server).FetchCustomers(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrPlatformUnavailable)
	assert.Equal(t, testConfig().MaxRetries+1, attempts)
}

func TestClient_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	}))
	defer server.Close()

	_, err := testClient(t, server).FetchCustomers(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrPlatformInvalidResponse)
}

func TestClient_NotFoundIsPermanent(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"errors":"Not Found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(t, server).FetchCustomers(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingestion.ErrPlatformRequestFailed)
	assert.Equal(t, 1, attempts)
}

func TestParseNextCursor(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "next only",
			header: `<https://acme.myshopify.com/admin/api/2024-01/orders.json?page_info=abc123&limit=250>; rel="next"`,
			want:   "abc123",
		},
		{
			name:   "previous and next",
			header: `<https://acme.myshopify.com/admin/api/2024-01/orders.json?page_info=prev1>; rel="previous", <https://acme.myshopify.com/admin/api/2024-01/orders.json?page_info=next1>; rel="next"`,
			want:   "next1",
		},
		{
			name:   "previous only",
			header: `<https://acme.myshopify.com/admin/api/2024-01/orders.json?page_info=prev1>; rel="previous"`,
			want:   "",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseNextCursor(tt.header))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	require.NoError(t, valid.Validate())

	tooBig := valid
	tooBig.PageSize = 500
	assert.Error(t, tooBig.Validate())

	noVersion := valid
	noVersion.APIVersion = ""
	assert.Error(t, noVersion.Validate())
}

func TestFactory(t *testing.T) {
	factory := Factory(DefaultConfig(), zap.NewNop())
	platform := factory("acme.myshopify.com", "shpat_x")
	client, ok := platform.(*Client)
	require.True(t, ok)
	assert.Equal(t, "https://acme.myshopify.com/admin/api/2024-01", client.baseURL)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(t, server).FetchCustomers(ctx, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || errors.Is(err, ingestion.ErrPlatformRateLimited))
}