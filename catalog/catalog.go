// Package catalog maps pipeline names to prebuilt stream definitions.
package catalog

import (
	"github.com/kbukum/rxlab/errors"
	"github.com/kbukum/rxlab/stream"
)

// Kind separates raw sources from composed pipelines.
type Kind string

const (
	KindSource   Kind = "source"
	KindPipeline Kind = "pipeline"
)

// Definition is an immutable named stream. Observable is cold: every
// subscription starts a fresh activation.
type Definition struct {
	Name        string                   `json:"name"`
	Kind        Kind                     `json:"kind"`
	Description string                   `json:"description"`
	Observable  *stream.Observable[any] `json:"-"`
}

// Catalog is a read-only registry of definitions in registration order.
type Catalog struct {
	defs  map[string]Definition
	order []string
}

// New builds a catalog. A later definition with the same name replaces the
// earlier one in place.
func New(defs ...Definition) *Catalog {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if _, exists := c.defs[d.Name]; !exists {
			c.order = append(c.order, d.Name)
		}
		c.defs[d.Name] = d
	}
	return c
}

// Get returns the definition registered under name.
func (c *Catalog) Get(name string) (Definition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// Lookup is Get with an UNKNOWN_PIPELINE error for missing names.
func (c *Catalog) Lookup(name string) (Definition, error) {
	d, ok := c.defs[name]
	if !ok {
		return Definition{}, errors.UnknownPipeline(name)
	}
	return d, nil
}

// Names returns every registered name in order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Sources returns the source definitions in order.
func (c *Catalog) Sources() []Definition { return c.byKind(KindSource) }

// Pipelines returns the pipeline definitions in order.
func (c *Catalog) Pipelines() []Definition { return c.byKind(KindPipeline) }

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.order) }

func (c *Catalog) byKind(k Kind) []Definition {
	var out []Definition
	for _, name := range c.order {
		if d := c.defs[name]; d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Erase adapts a typed stream to the untyped form definitions carry.
func Erase[T any](o *stream.Observable[T]) *stream.Observable[any] {
	return stream.Map(o, func(v T) (any, error) { return v, nil })
}
