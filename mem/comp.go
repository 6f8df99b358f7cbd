package mem

import (
	"log"

	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/vm"
)

// A Comp is the physical memory component. It serves word reads and writes
// by physical address and moves whole frames to and from the swap device on
// Evict and Restore.
//
// Out-of-range addresses indicate a bug in the caller and panic.
type Comp struct {
	name      string
	pageSize  uint64
	numFrames uint64
	storage   *Storage
	swap      *Swap
	tracer    tracing.Tracer
}

// Name returns the name of the component.
func (c *Comp) Name() string {
	return c.name
}

// NumFrames returns the number of frames the memory holds.
func (c *Comp) NumFrames() uint64 {
	return c.numFrames
}

// PageSize returns the number of words in a frame.
func (c *Comp) PageSize() uint64 {
	return c.pageSize
}

// Read returns the word at the given physical address.
func (c *Comp) Read(addr uint64) vm.Word {
	value, err := c.storage.Read(addr)
	if err != nil {
		log.Panic(err)
	}

	return value
}

// Write stores a word at the given physical address.
func (c *Comp) Write(addr uint64, value vm.Word) {
	err := c.storage.Write(addr, value)
	if err != nil {
		log.Panic(err)
	}
}

// Evict saves the contents of the frame to the swap device under the page's
// identity. The caller promises the page is currently resident in the frame.
func (c *Comp) Evict(frame, page uint64) {
	data, err := c.storage.ReadRange(frame*c.pageSize, c.pageSize)
	if err != nil {
		log.Panic(err)
	}

	c.swap.PageOut(page, data)

	if c.tracer != nil {
		event := tracing.NewEvent(tracing.KindEvict, "page out", c.name)
		event.Page = page
		event.Frame = frame
		c.tracer.Record(event)
	}
}

// Restore loads the previously evicted image of the page into the frame. A
// page that was never evicted fills the frame with zeros.
func (c *Comp) Restore(frame, page uint64) {
	data, ok := c.swap.PageIn(page)
	if !ok {
		data = make([]vm.Word, c.pageSize)
	}

	err := c.storage.WriteRange(frame*c.pageSize, data)
	if err != nil {
		log.Panic(err)
	}

	if c.tracer != nil {
		event := tracing.NewEvent(tracing.KindRestore, "page in", c.name)
		event.Page = page
		event.Frame = frame
		c.tracer.Record(event)
	}
}

// Swap exposes the swap device, mainly for inspection in tests and
// monitoring.
func (c *Comp) Swap() *Swap {
	return c.swap
}
