package vm

import (
	"log"

	"github.com/sarchlab/vmsim/tracing"
)

// A Builder can build translator components.
type Builder struct {
	geometry Geometry
	memory   PhysicalMemory
	finder   FrameFinder
	tracer   tracing.Tracer
}

// MakeBuilder creates a builder with a small default geometry.
func MakeBuilder() Builder {
	return Builder{
		geometry: Geometry{
			OffsetWidth:          4,
			PhysicalAddressWidth: 10,
			VirtualAddressWidth:  16,
		},
	}
}

// WithGeometry sets the address-space geometry.
func (b Builder) WithGeometry(g Geometry) Builder {
	b.geometry = g
	return b
}

// WithMemory sets the physical memory that holds the page table and the
// resident pages.
func (b Builder) WithMemory(m PhysicalMemory) Builder {
	b.memory = m
	return b
}

// WithFrameFinder overrides the frame acquisition policy. When not set, the
// cyclic-distance finder is used.
func (b Builder) WithFrameFinder(f FrameFinder) Builder {
	b.finder = f
	return b
}

// WithTracer attaches a tracer that receives a fault event for every frame
// the translator installs.
func (b Builder) WithTracer(t tracing.Tracer) Builder {
	b.tracer = t
	return b
}

// Build returns a newly created translator component.
func (b Builder) Build(name string) *Comp {
	if err := b.geometry.Validate(); err != nil {
		log.Panicf("invalid geometry for %s: %v", name, err)
	}

	if b.memory == nil {
		log.Panicf("translator %s requires a physical memory", name)
	}

	finder := b.finder
	if finder == nil {
		finder = newCyclicFrameFinder(b.geometry, b.memory)
	}

	c := &Comp{
		name:     name,
		geometry: b.geometry,
		memory:   b.memory,
	}
	c.translator = translator{
		geometry: b.geometry,
		memory:   b.memory,
		finder:   finder,
		tracer:   b.tracer,
		name:     name,
	}

	return c
}
