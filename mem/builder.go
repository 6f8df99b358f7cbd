package mem

import (
	"github.com/sarchlab/vmsim/tracing"
)

// A Builder can build physical memory components.
type Builder struct {
	pageSize  uint64
	numFrames uint64
	tracer    tracing.Tracer
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{
		pageSize:  16,
		numFrames: 64,
	}
}

// WithPageSize sets the number of words per frame.
func (b Builder) WithPageSize(pageSize uint64) Builder {
	b.pageSize = pageSize
	return b
}

// WithNumFrames sets the number of frames the memory holds.
func (b Builder) WithNumFrames(numFrames uint64) Builder {
	b.numFrames = numFrames
	return b
}

// WithTracer attaches a tracer that receives evict and restore events.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracer = t
	return b
}

// Build returns a newly created physical memory component.
func (b Builder) Build(name string) *Comp {
	capacity := b.numFrames * b.pageSize

	return &Comp{
		name:      name,
		pageSize:  b.pageSize,
		numFrames: b.numFrames,
		storage:   NewStorage(capacity, b.pageSize),
		swap:      NewSwap(b.pageSize),
		tracer:    b.tracer,
	}
}
