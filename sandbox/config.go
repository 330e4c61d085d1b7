package sandbox

import (
	"fmt"
	"slices"

	"github.com/kbukum/rxlab/catalog"
	"github.com/kbukum/rxlab/emitter"
	"github.com/kbukum/rxlab/runner"
	"github.com/kbukum/rxlab/validation"
)

// requiredTags are the sources the default catalog composes.
var requiredTags = []string{"A", "B", "C"}

// Config configures a Sandbox.
type Config struct {
	Sources   []emitter.Definition `yaml:"sources" mapstructure:"sources" validate:"dive"`
	Timing    catalog.Timing       `yaml:"timing" mapstructure:"timing"`
	Runner    runner.Config        `yaml:"runner" mapstructure:"runner"`
	QueueSize int                  `yaml:"queue_size" mapstructure:"queue_size" validate:"gte=0"`
}

// DefaultConfig returns the standard three sources and catalog timing.
func DefaultConfig() Config {
	c := Config{Timing: catalog.DefaultTiming()}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if len(c.Sources) == 0 {
		c.Sources = emitter.DefaultDefinitions()
	}
	for i := range c.Sources {
		if c.Sources[i].Description == "" {
			c.Sources[i].Description = fmt.Sprintf("Emits %s: n every %s", c.Sources[i].Tag, c.Sources[i].Interval)
		}
	}
	c.Timing.ApplyDefaults()
	if c.QueueSize == 0 {
		c.QueueSize = 256
	}
}

// Validate checks field constraints, unique source tags and that the tags
// used by the catalog exist.
func (c *Config) Validate() error {
	v := validation.New()
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		field := fmt.Sprintf("sources[%d].tag", i)
		v.Custom(!seen[s.Tag], field, "must be unique")
		v.Pattern(field, s.Tag, `^[A-Za-z][A-Za-z0-9]*$`)
		seen[s.Tag] = true
	}
	for _, tag := range requiredTags {
		v.Custom(slices.ContainsFunc(c.Sources, func(d emitter.Definition) bool { return d.Tag == tag }),
			"sources", "must define source "+tag)
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return validation.Validate(c)
}
