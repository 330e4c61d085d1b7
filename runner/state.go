package runner

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kbukum/rxlab/emitter"
)

// State is the lifecycle state of the runner.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further output is possible without a new run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Log lines written around a run.
const (
	LineSubscribing = "Subscribing..."
	LineSeparator   = "---"
	LineCompleted   = "###"
	LineDone        = "Subscription completed"
)

// Config holds runner policy.
type Config struct {
	// CancelStopsSources makes CancelActiveRun also stop every source.
	CancelStopsSources bool `mapstructure:"cancel_stops_sources"`
}

// Snapshot is the display view of the runner.
type Snapshot struct {
	RunID     string     `json:"run_id,omitempty"`
	Pipeline  string     `json:"pipeline,omitempty"`
	State     State      `json:"state"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	Values    int        `json:"values"`
	Error     string     `json:"error,omitempty"`
	Lines     []string   `json:"lines"`
}

// Render converts a pipeline value to its log rendering. Strings are used
// as-is, emissions by their message.
func Render(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case emitter.Emission:
		if x.Message != "" {
			return x.Message
		}
		if x.Tag == "" {
			return strconv.Itoa(x.Sequence)
		}
		return fmt.Sprintf("%s: %d", x.Tag, x.Sequence)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	default:
		return fmt.Sprint(v)
	}
}
