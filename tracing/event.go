// Package tracing records the paging activity of a simulation. Components
// publish events through a Tracer; backends buffer them and persist to a CSV
// file or a SQLite database.
package tracing

import (
	"time"

	"github.com/rs/xid"
)

// The event kinds of this module. The components record fault, evict, and
// restore events; no component records KindAccess.
const (
	KindAccess  = "access"
	KindFault   = "fault"
	KindEvict   = "evict"
	KindRestore = "restore"
)

// An Event is one observed paging action.
type Event struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	What  string  `json:"what"`
	Where string  `json:"where"`
	Page  uint64  `json:"page"`
	Frame uint64  `json:"frame"`
	Time  float64 `json:"time"`
}

// A Tracer consumes events as they happen.
type Tracer interface {
	Record(e Event)
}

var traceStart = time.Now()

// NewEvent creates an event stamped with a fresh ID and the wall-clock time
// since the process started tracing.
func NewEvent(kind, what, where string) Event {
	return Event{
		ID:    xid.New().String(),
		Kind:  kind,
		What:  what,
		Where: where,
		Time:  time.Since(traceStart).Seconds(),
	}
}
