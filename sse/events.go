package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Event names written by this package.
const (
	EventConnected = "connected"
	EventMessage   = "message"
	EventError     = "error"
)

// Event is one SSE frame. An empty Name omits the event line, which
// browsers treat as "message".
type Event struct {
	Name string
	Data []byte
}

// NewJSONEvent marshals v into an event.
func NewJSONEvent(name string, v any) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, fmt.Errorf("encode %s event: %w", name, err)
	}
	return Event{Name: name, Data: data}, nil
}

// WriteTo writes the frame in wire format. Multi-line data is split into
// several data fields.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	if e.Name != "" {
		b.WriteString("event: ")
		b.WriteString(e.Name)
		b.WriteByte('\n')
	}
	for _, line := range strings.Split(string(e.Data), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
