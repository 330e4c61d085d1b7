package catalog

import "time"

// Timing holds the tunable constants of the default pipelines.
type Timing struct {
	TakeCount        int           `mapstructure:"take_count" validate:"gte=0"`
	TakeWhileBelow   int           `mapstructure:"take_while_below" validate:"gte=0"`
	FirstSequence    int           `mapstructure:"first_sequence" validate:"gte=0"`
	ConcatCount      int           `mapstructure:"concat_count" validate:"gte=0"`
	InnerInterval    time.Duration `mapstructure:"inner_interval" validate:"gt=0"`
	InnerCount       int           `mapstructure:"inner_count" validate:"gte=0"`
	BufferInterval   time.Duration `mapstructure:"buffer_interval" validate:"gt=0"`
	BufferSpan       time.Duration `mapstructure:"buffer_span" validate:"gt=0"`
	DebounceInterval time.Duration `mapstructure:"debounce_interval" validate:"gt=0"`
	DebounceDue      time.Duration `mapstructure:"debounce_due" validate:"gt=0"`
	FailSequence     int           `mapstructure:"fail_sequence" validate:"gte=0"`
}

// DefaultTiming returns the standard demo constants.
func DefaultTiming() Timing {
	return Timing{
		TakeCount:        3,
		TakeWhileBelow:   3,
		FirstSequence:    3,
		ConcatCount:      3,
		InnerInterval:    time.Second,
		InnerCount:       3,
		BufferInterval:   3 * time.Second,
		BufferSpan:       3 * time.Second,
		DebounceInterval: 3 * time.Second,
		DebounceDue:      3 * time.Second,
		FailSequence:     2,
	}
}

// ApplyDefaults fills unset durations. Counts may legitimately be zero and
// are left alone.
func (t *Timing) ApplyDefaults() {
	d := DefaultTiming()
	if t.InnerInterval == 0 {
		t.InnerInterval = d.InnerInterval
	}
	if t.BufferInterval == 0 {
		t.BufferInterval = d.BufferInterval
	}
	if t.BufferSpan == 0 {
		t.BufferSpan = d.BufferSpan
	}
	if t.DebounceInterval == 0 {
		t.DebounceInterval = d.DebounceInterval
	}
	if t.DebounceDue == 0 {
		t.DebounceDue = d.DebounceDue
	}
}
