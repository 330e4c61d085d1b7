package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/rxlab/catalog"
	"github.com/kbukum/rxlab/logger"
	"github.com/kbukum/rxlab/sandbox"
	"github.com/kbukum/rxlab/server"
	"github.com/kbukum/rxlab/sse"
	"github.com/kbukum/rxlab/validation"
)

const (
	// StreamPattern matches every log stream client id.
	StreamPattern = "logs:*"

	streamClientPrefix = "logs:"
	namePattern        = `^[A-Za-z][A-Za-z0-9]*$`
	maxNameLength      = 64

	// DefaultOperationTimeout bounds each call into the sandbox loop.
	DefaultOperationTimeout = 5 * time.Second
)

// CatalogEntry is one catalog item as listed by GET /api/catalog.
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CatalogResponse groups the catalog by kind.
type CatalogResponse struct {
	Sources   []CatalogEntry `json:"sources"`
	Pipelines []CatalogEntry `json:"pipelines"`
}

// CancelResponse reports whether DELETE /api/runs/active found a run.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// LogsResponse is the GET /api/logs body.
type LogsResponse struct {
	Lines []string `json:"lines"`
}

// Option configures a Handler.
type Option func(*Handler)

// WithOperationTimeout overrides DefaultOperationTimeout.
func WithOperationTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithKeepAlive sets the SSE keep-alive interval.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Handler) { h.keepAlive = d }
}

// Handler serves the sandbox routes.
type Handler struct {
	sandbox   *sandbox.Sandbox
	hub       *sse.Hub
	timeout   time.Duration
	keepAlive time.Duration
	log       *logger.Logger
}

// NewHandler creates a handler. hub may be nil, in which case the stream
// route is not registered.
func NewHandler(s *sandbox.Sandbox, hub *sse.Hub, opts ...Option) *Handler {
	h := &Handler{
		sandbox: s,
		hub:     hub,
		timeout: DefaultOperationTimeout,
		log:     logger.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes under /api.
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/api")
	g.GET("/catalog", h.getCatalog)
	g.POST("/runs/:name", h.startRun)
	g.GET("/runs/active", h.getActiveRun)
	g.DELETE("/runs/active", h.cancelActiveRun)
	g.POST("/sources/stop", h.stopSources)
	g.GET("/logs", h.getLogs)
	g.DELETE("/logs", h.clearLogs)
	if h.hub != nil {
		g.GET("/logs/stream", h.streamLogs)
	}
}

func (h *Handler) operationContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *Handler) getCatalog(c *gin.Context) {
	cat := h.sandbox.Catalog()
	server.RespondOK(c, CatalogResponse{
		Sources:   entries(cat.Sources()),
		Pipelines: entries(cat.Pipelines()),
	})
}

func entries(defs []catalog.Definition) []CatalogEntry {
	out := make([]CatalogEntry, 0, len(defs))
	for _, d := range defs {
		out = append(out, CatalogEntry{Name: d.Name, Description: d.Description})
	}
	return out
}

func (h *Handler) startRun(c *gin.Context) {
	name := c.Param("name")
	v := validation.New()
	v.Required("name", name).MaxLength("name", name, maxNameLength).Pattern("name", name, namePattern)
	if err := v.Validate(); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx, cancel := h.operationContext(c)
	defer cancel()
	snap, err := h.sandbox.Run(ctx, name)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.log.WithContext(ctx).Info("Run started via API", logger.Fields("pipeline", name, "run_id", snap.RunID))
	server.RespondAccepted(c, snap)
}

func (h *Handler) getActiveRun(c *gin.Context) {
	ctx, cancel := h.operationContext(c)
	defer cancel()
	snap, err := h.sandbox.Snapshot(ctx)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, snap)
}

func (h *Handler) cancelActiveRun(c *gin.Context) {
	ctx, cancel := h.operationContext(c)
	defer cancel()
	cancelled, err := h.sandbox.Cancel(ctx)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, CancelResponse{Cancelled: cancelled})
}

func (h *Handler) stopSources(c *gin.Context) {
	ctx, cancel := h.operationContext(c)
	defer cancel()
	if err := h.sandbox.StopSources(ctx); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) getLogs(c *gin.Context) {
	server.RespondOK(c, LogsResponse{Lines: h.sandbox.Lines()})
}

func (h *Handler) clearLogs(c *gin.Context) {
	ctx, cancel := h.operationContext(c)
	defer cancel()
	if err := h.sandbox.ClearLog(ctx); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) streamLogs(c *gin.Context) {
	// The snapshot is read after the client is registered; clients skip log
	// events whose index is already covered by it.
	opts := []sse.ServeOption{sse.WithReplay(func() ([]sse.Event, error) {
		snapshot, err := sandbox.SnapshotEvent(h.sandbox.Lines())
		if err != nil {
			return nil, err
		}
		return []sse.Event{snapshot}, nil
	})}
	if h.keepAlive > 0 {
		opts = append(opts, sse.WithKeepAlive(h.keepAlive))
	}
	sse.ServeSSE(h.hub, c.Writer, c.Request, streamClientPrefix+uuid.NewString(), opts...)
}

