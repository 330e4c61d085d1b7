package server

import (
	"context"

	"github.com/kbukum/rxlab/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component runs a Server under the component registry.
type Component struct {
	server *Server
}

func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (c *Component) Name() string { return componentName }

func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

func (c *Component) Health(context.Context) component.Health {
	if c.server.Listening() {
		return component.Health{Name: componentName, Status: component.StatusHealthy, Message: c.server.Addr()}
	}
	return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
}

func (c *Component) Describe() component.Description {
	return component.Description{Name: "HTTP Server", Type: "server", Details: c.server.Addr()}
}
