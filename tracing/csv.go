package tracing

import (
	"fmt"
	"os"

	"github.com/tebeka/atexit"
)

// CSVTracerBackend is a tracer that stores the events into a CSV file.
type CSVTracerBackend struct {
	path string
	file *os.File

	events     []Event
	bufferSize int
}

// NewCSVTracerBackend creates a new CSVTracerBackend.
func NewCSVTracerBackend(path string) *CSVTracerBackend {
	return &CSVTracerBackend{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the tracing csv file. If the file already exists, it will be
// overwritten.
func (t *CSVTracerBackend) Init() {
	file, err := os.Create(t.path)
	if err != nil {
		panic(err)
	}
	t.file = file

	fmt.Fprintf(file, "ID, Kind, What, Where, Page, Frame, Time\n")

	atexit.Register(func() {
		t.Flush()
		err := t.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// Record buffers an event for writing.
func (t *CSVTracerBackend) Record(e Event) {
	t.events = append(t.events, e)
	if len(t.events) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered events to the CSV file.
func (t *CSVTracerBackend) Flush() {
	for _, e := range t.events {
		fmt.Fprintf(t.file, "%s, %s, %s, %s, %d, %d, %.10f\n",
			e.ID,
			e.Kind,
			e.What,
			e.Where,
			e.Page,
			e.Frame,
			e.Time,
		)
	}

	t.events = nil
}
