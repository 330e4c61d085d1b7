package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/rxlab/component"
	apperrors "github.com/kbukum/rxlab/errors"
	"github.com/kbukum/rxlab/logger"
)

func testConfig() Config {
	cfg := Config{Host: "127.0.0.1", Mode: gin.TestMode}
	cfg.ApplyDefaults()
	cfg.Port = 0
	return cfg
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.Mode != "release" || cfg.ReadTimeout != 15*time.Second || cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.WriteTimeout != 0 {
		t.Errorf("write timeout should stay disabled for streaming, got %v", cfg.WriteTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.Port = 70000
	cfg.Mode = "verbose"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "port") || !strings.Contains(err.Error(), "mode") {
		t.Errorf("expected port and mode in %q", err)
	}
}

func TestDefaultEndpoints(t *testing.T) {
	s := New(testConfig(), logger.NewNop())
	s.ApplyMiddleware(nil)

	unhealthy := false
	s.RegisterDefaultEndpoints("rxlab", func(context.Context) []component.Health {
		if unhealthy {
			return []component.Health{{Name: "loop", Status: component.StatusUnhealthy}}
		}
		return []component.Health{{Name: "loop", Status: component.StatusHealthy}}
	})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("/health = %d", rr.Code)
	}
	var body struct {
		Status     string             `json:"status"`
		Service    string             `json:"service"`
		Components []component.Health `json:"components"`
	}
	json.Unmarshal(rr.Body.Bytes(), &body)
	if body.Status != "healthy" || body.Service != "rxlab" || len(body.Components) != 1 {
		t.Errorf("unexpected body %s", rr.Body.String())
	}

	unhealthy = true
	for _, path := range []string{"/health", "/ready"} {
		rr = httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s = %d, want 503", path, rr.Code)
		}
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/info", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"build"`) {
		t.Errorf("/info = %d %s", rr.Code, rr.Body.String())
	}
}

func TestRespondHelpers(t *testing.T) {
	s := New(testConfig(), logger.NewNop())
	e := s.Engine()
	e.GET("/ok", func(c *gin.Context) { RespondOK(c, []string{"a"}) })
	e.GET("/accepted", func(c *gin.Context) { RespondAccepted(c, "x") })
	e.GET("/none", RespondNoContent)
	e.GET("/app", func(c *gin.Context) { RespondWithError(c, apperrors.UnknownPipeline("zip")) })
	e.GET("/plain", func(c *gin.Context) { RespondWithError(c, errors.New("boom")) })

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/ok", 200, `{"data":["a"]}`},
		{"/accepted", 202, `{"data":"x"}`},
		{"/none", 204, ""},
		{"/app", 404, `"code":"UNKNOWN_PIPELINE"`},
		{"/plain", 500, `"code":"INTERNAL_ERROR"`},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rr.Code != tt.code {
			t.Errorf("%s: status %d, want %d", tt.path, rr.Code, tt.code)
		}
		if !strings.Contains(rr.Body.String(), tt.body) {
			t.Errorf("%s: body %s, want %s", tt.path, rr.Body.String(), tt.body)
		}
	}
}

func TestServerLifecycle(t *testing.T) {
	s := New(testConfig(), logger.NewNop())
	s.Engine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	comp := NewComponent(s)

	ctx := context.Background()
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %+v", h)
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("health after start = %+v", h)
	}

	resp, err := http.Get("http://" + s.Addr() + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.Listening() {
		t.Error("server should not be listening after Stop")
	}
}

func TestServerMountsExtraHandler(t *testing.T) {
	s := New(testConfig(), logger.NewNop())
	s.Handle("/raw/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/raw/x", nil))
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d", rr.Code)
	}
}
