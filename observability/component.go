package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kbukum/rxlab/component"
)

type provider struct {
	name     string
	shutdown func(context.Context) error
}

// Component flushes and shuts down telemetry providers when the
// application stops. Register it before the components whose spans and
// metrics it exports, so it stops after them.
type Component struct {
	mu        sync.Mutex
	providers []provider
	stopped   bool
}

// NewComponent creates an empty telemetry component.
func NewComponent() *Component {
	return &Component{}
}

// Add registers a provider's shutdown func. Providers shut down in
// reverse order of registration.
func (c *Component) Add(name string, shutdown func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers = append(c.providers, provider{name: name, shutdown: shutdown})
}

func (c *Component) Name() string { return "telemetry" }

func (c *Component) Start(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = false
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return nil
	}
	c.stopped = true

	var errs []error
	for i := len(c.providers) - 1; i >= 0; i-- {
		p := c.providers[i]
		if err := p.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", p.name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Component) Health(context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "shut down"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: fmt.Sprintf("%d providers", len(c.providers))}
}

func (c *Component) Describe() component.Description {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.name
	}
	return component.Description{Name: "Telemetry", Type: "otel", Details: "providers=" + strings.Join(names, ",")}
}
