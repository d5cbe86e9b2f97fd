package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupSpanRecorder installs an in-memory tracer provider and restores the
// previous global provider when the test ends.
func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})
	return recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_Disabled(t *testing.T) {
	recorder := setupSpanRecorder(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorder.Ended())
}

func TestTracing_EnrichesSpanWithTenantAndRequestID(t *testing.T) {
	recorder := setupSpanRecorder(t)
	tenantID := uuid.New().String()

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing())
	router.Use(TenantMiddleware(DefaultTenantMiddlewareConfig()))
	router.Use(TracingAttributeInjector())
	router.GET("/api/v1/sync", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil)
	req.Header.Set(TenantHeaderName, tenantID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	got, ok := spanAttr(spans[0], "tenant_id")
	require.True(t, ok)
	assert.Equal(t, tenantID, got.AsString())

	_, ok = spanAttr(spans[0], "request_id")
	assert.True(t, ok)
}

func TestTracing_RejectsMalformedTenantHeader(t *testing.T) {
	recorder := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing())
	router.Use(TracingAttributeInjector())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TenantHeaderName, "not-a-uuid'; DROP TABLE spans;--")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	_, ok := spanAttr(spans[0], "tenant_id")
	assert.False(t, ok, "malformed tenant header must not reach trace attributes")
}

func TestSpanErrorMarker_MarksServerErrors(t *testing.T) {
	recorder := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing())
	router.Use(SpanErrorMarker())
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestSpanErrorMarker_LeavesSuccessAlone(t *testing.T) {
	recorder := setupSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing())
	router.Use(SpanErrorMarker())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}
