package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/rxlab/logger"
	"github.com/kbukum/rxlab/observability"
	"github.com/kbukum/rxlab/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mws ...gin.HandlerFunc) *gin.Engine {
	e := gin.New()
	e.Use(mws...)
	return e
}

func serve(h http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	h.ServeHTTP(rr, req)
	return rr
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	e := newEngine(middleware.Recovery(logger.NewNop()))
	e.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if rr := serve(e, "GET", "/", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	e := newEngine(middleware.Recovery(logger.NewNop()))
	e.GET("/boom", func(*gin.Context) { panic("test panic") })

	rr := serve(e, "GET", "/boom", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q", body.Error.Code)
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	var seen string
	e := newEngine(middleware.RequestID())
	e.GET("/", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	rr := serve(e, "GET", "/", nil)

	id := rr.Header().Get(middleware.RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected generated UUID, got %q", id)
	}
	if seen != id {
		t.Errorf("request context id = %q, header = %q", seen, id)
	}
}

func TestRequestID_PreservesValidID(t *testing.T) {
	e := newEngine(middleware.RequestID())
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	want := uuid.NewString()
	rr := serve(e, "GET", "/", map[string]string{middleware.RequestIDHeader: want})
	if got := rr.Header().Get(middleware.RequestIDHeader); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestRequestID_ReplacesMalformedID(t *testing.T) {
	e := newEngine(middleware.RequestID())
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	rr := serve(e, "GET", "/", map[string]string{middleware.RequestIDHeader: "<script>"})
	if got := rr.Header().Get(middleware.RequestIDHeader); got == "<script>" || got == "" {
		t.Fatalf("malformed id should be replaced, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func okHandler(t *testing.T, wantCalled bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !wantCalled {
			t.Error("handler should not be called")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS_SetHeaders(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{"GET", "POST"},
	}
	rr := serve(middleware.CORS(cfg)(okHandler(t, true)), "GET", "/", map[string]string{"Origin": "https://example.com"})
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Fatalf("allow methods = %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	var cfg middleware.CORSConfig
	cfg.ApplyDefaults()
	rr := serve(middleware.CORS(&cfg)(okHandler(t, false)), "OPTIONS", "/api/runs/take", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), middleware.RequestIDHeader) {
		t.Errorf("default headers should include the request id header")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := &middleware.CORSConfig{AllowedOrigins: []string{"https://allowed.com"}}
	rr := serve(middleware.CORS(cfg)(okHandler(t, true)), "GET", "/", map[string]string{"Origin": "https://evil.com"})
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header, got %s", got)
	}
}

func TestCORS_Credentials(t *testing.T) {
	cfg := &middleware.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}
	rr := serve(middleware.CORS(cfg)(okHandler(t, true)), "GET", "/", map[string]string{"Origin": "https://app.example.com"})
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected 'true', got %s", got)
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)

	e := newEngine(middleware.RequestID(), middleware.RequestLogger(log))
	e.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	e.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	e.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(e, "GET", "/ok", nil)
	serve(e, "GET", "/missing", nil)
	serve(e, "GET", "/health", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines (health skipped), got %d: %s", len(lines), buf.String())
	}
	var first, second map[string]any
	json.Unmarshal([]byte(lines[0]), &first)
	json.Unmarshal([]byte(lines[1]), &second)
	if first["level"] != "debug" || second["level"] != "warn" {
		t.Errorf("levels = %v, %v", first["level"], second["level"])
	}
	if first["request_id"] == nil {
		t.Error("expected request_id from context")
	}
}

// ---------------------------------------------------------------------------
// Tracing and metrics
// ---------------------------------------------------------------------------

func TestTracing_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	e := newEngine(middleware.RequestID(), middleware.Tracing())
	e.GET("/api/runs/:name", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	serve(e, "GET", "/api/runs/take", nil)

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["http.route"] != "/api/runs/:name" {
		t.Errorf("route = %q", attrs["http.route"])
	}
	if attrs["http.status_code"] != "500" {
		t.Errorf("status = %q", attrs["http.status_code"])
	}
	if attrs[observability.AttrRequestID] == "" {
		t.Error("expected request id attribute")
	}
	if spans[0].Status().Code.String() != "Error" {
		t.Errorf("span status = %v", spans[0].Status())
	}
}

func TestMetrics_RecordsRequests(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	e := newEngine(middleware.Metrics(m))
	e.GET("/api/logs", func(c *gin.Context) { c.Status(http.StatusOK) })
	serve(e, "GET", "/api/logs", nil)
	serve(e, "GET", "/api/logs", nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok && md.Name == "request.total" {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	if total != 2 {
		t.Errorf("request.total = %d, want 2", total)
	}
}

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-before")
				next.ServeHTTP(w, r)
				order = append(order, name+"-after")
			})
		}
	}
	h := middleware.Chain(mk("m1"), mk("m2"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	serve(h, "GET", "/", nil)
	want := "m1-before,m2-before,handler,m2-after,m1-after"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}
