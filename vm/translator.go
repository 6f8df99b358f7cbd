package vm

import (
	"github.com/sarchlab/vmsim/tracing"
)

// A translator walks the page table from the root frame, filling missing
// slots with frames acquired from the finder.
type translator struct {
	geometry Geometry
	memory   PhysicalMemory
	finder   FrameFinder
	tracer   tracing.Tracer
	name     string

	stats Stats
}

// Stats counts translator activity since the component was built.
type Stats struct {
	Accesses  uint64
	Faults    uint64
	Reclaimed uint64
	Fresh     uint64
	Evictions uint64
}

// translate resolves a virtual address into the leaf frame holding its page.
// After it returns, every slot along the split path is non-zero and the page
// is resident in the returned frame.
func (t *translator) translate(vAddr uint64, offsets []uint64) uint64 {
	page := vAddr >> t.geometry.OffsetWidth
	depth := t.geometry.TablesDepth()

	current := uint64(0)
	for i := uint64(0); i < depth; i++ {
		slotAddr := current*t.geometry.PageSize() + offsets[i]
		next := uint64(t.memory.Read(slotAddr))

		if next == 0 {
			placement := t.finder.FindFrame(current, page)
			next = placement.Frame

			t.memory.Write(slotAddr, Word(next))

			if i == depth-1 {
				t.memory.Restore(next, page)
			} else {
				t.zeroFrame(next)
			}

			t.recordFault(placement, page)
		}

		current = next
	}

	return current
}

func (t *translator) zeroFrame(frame uint64) {
	for i := uint64(0); i < t.geometry.PageSize(); i++ {
		t.memory.Write(frame*t.geometry.PageSize()+i, 0)
	}
}

func (t *translator) recordFault(placement Placement, page uint64) {
	t.stats.Faults++

	switch placement.Kind {
	case PlacementReclaimed:
		t.stats.Reclaimed++
	case PlacementFresh:
		t.stats.Fresh++
	case PlacementEvicted:
		t.stats.Evictions++
	}

	if t.tracer == nil {
		return
	}

	event := tracing.NewEvent(tracing.KindFault, placement.Kind.traceWhat(),
		t.name)
	event.Page = page
	event.Frame = placement.Frame
	t.tracer.Record(event)
}

func (k PlacementKind) traceWhat() string {
	switch k {
	case PlacementReclaimed:
		return "reclaim"
	case PlacementFresh:
		return "fresh"
	case PlacementEvicted:
		return "evict"
	}

	return "unknown"
}
