package sandbox

import (
	"github.com/kbukum/rxlab/logger"
	"github.com/kbukum/rxlab/logsink"
	"github.com/kbukum/rxlab/sse"
)

// Event names pushed to log stream clients.
const (
	EventLog      = "log"
	EventSnapshot = "snapshot"
)

// LogSnapshot is the first frame sent to a new log stream client. Later
// "log" frames carry indexes that continue from len(Lines).
type LogSnapshot struct {
	Lines []string `json:"lines"`
}

// BridgeLogs forwards every change of s to clients of b matching pattern.
// Broadcasting never blocks the caller: the listener runs on the scheduler
// loop, so a full hub queue drops the event instead.
func BridgeLogs(s *Sandbox, b sse.Broadcaster, pattern string) (unsubscribe func()) {
	log := logger.WithComponent("sandbox.bridge")
	return s.Subscribe(func(ev logsink.Event) {
		frame, err := sse.NewJSONEvent(EventLog, ev)
		if err != nil {
			log.Error("Encode log event", logger.MergeWithError(nil, err))
			return
		}
		if !b.TryBroadcast(pattern, frame) {
			log.Debug("Log event dropped", logger.Fields("type", string(ev.Type), "index", ev.Index))
		}
	})
}

// SnapshotEvent builds the initial frame for a log stream client.
func SnapshotEvent(lines []string) (sse.Event, error) {
	if lines == nil {
		lines = []string{}
	}
	return sse.NewJSONEvent(EventSnapshot, LogSnapshot{Lines: lines})
}
