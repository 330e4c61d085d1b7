package sandbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/rxlab/component"
	"github.com/kbukum/rxlab/logger"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component runs the sandbox loop under the component registry.
type Component struct {
	sandbox *Sandbox
	mu      sync.Mutex
	started bool
}

// NewComponent wraps s.
func NewComponent(s *Sandbox) *Component {
	return &Component{sandbox: s}
}

func (c *Component) Name() string { return "sandbox" }

// Start runs the loop in its own goroutine.
func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.started = true
	go c.sandbox.loop.Run()
	c.sandbox.log.Info("Sandbox loop started", logger.Fields("pipelines", c.sandbox.catalog.Len()))
	return nil
}

// Stop cancels the active run, stops every source and then the loop.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}

	err := c.sandbox.loop.Do(ctx, func() {
		c.sandbox.runner.CancelActiveRun()
		c.sandbox.runner.StopSources()
	})
	if err != nil {
		c.sandbox.log.Warn("Sandbox shutdown without cancelling run", logger.MergeWithError(nil, err))
	}
	c.sandbox.loop.Stop()

	select {
	case <-c.sandbox.loop.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Health is unhealthy once the loop has exited or when it does not answer
// within ctx.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name()}
	select {
	case <-c.sandbox.loop.Done():
		h.Status = component.StatusUnhealthy
		h.Message = "loop stopped"
		return h
	default:
	}

	var msg string
	err := c.sandbox.do(ctx, func() {
		msg = fmt.Sprintf("state=%s active_sources=%d", c.sandbox.runner.State(), c.sandbox.sources.Active())
	})
	if err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
		return h
	}
	h.Status = component.StatusHealthy
	h.Message = msg
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Sandbox",
		Type:    "scheduler",
		Details: fmt.Sprintf("sources=%d pipelines=%d", len(c.sandbox.catalog.Sources()), len(c.sandbox.catalog.Pipelines())),
	}
}
