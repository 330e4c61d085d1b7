package sandbox

import (
	"testing"
	"time"

	"github.com/kbukum/rxlab/emitter"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Sources) != 3 {
		t.Fatalf("sources = %d, want 3", len(cfg.Sources))
	}
	if cfg.QueueSize != 256 {
		t.Errorf("queue size = %d", cfg.QueueSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_DescriptionFilled(t *testing.T) {
	cfg := Config{Sources: []emitter.Definition{
		{Tag: "A", Interval: time.Second},
		{Tag: "B", Interval: time.Second, Description: "custom"},
		{Tag: "C", Interval: 2 * time.Second},
	}}
	cfg.ApplyDefaults()
	if cfg.Sources[0].Description != "Emits A: n every 1s" {
		t.Errorf("description = %q", cfg.Sources[0].Description)
	}
	if cfg.Sources[1].Description != "custom" {
		t.Errorf("explicit description overwritten: %q", cfg.Sources[1].Description)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sources []emitter.Definition
		wantErr bool
	}{
		{"defaults", emitter.DefaultDefinitions(), false},
		{"extra source", append(emitter.DefaultDefinitions(), emitter.Definition{Tag: "D", Interval: time.Second}), false},
		{"missing C", emitter.DefaultDefinitions()[:2], true},
		{"duplicate", append(emitter.DefaultDefinitions(), emitter.Definition{Tag: "A", Interval: time.Second}), true},
		{"bad tag", append(emitter.DefaultDefinitions(), emitter.Definition{Tag: "1x", Interval: time.Second}), true},
		{"zero interval", []emitter.Definition{
			{Tag: "A", Interval: time.Second},
			{Tag: "B", Interval: time.Second},
			{Tag: "C"},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Sources = tt.sources
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
