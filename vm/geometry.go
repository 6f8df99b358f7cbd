// Package vm implements a hierarchical demand-paged virtual memory
// translator. Virtual addresses are resolved by walking a multi-level page
// table that itself lives inside the physical memory; missing table nodes and
// data pages are materialized into frames on demand.
package vm

import "fmt"

// A Word is a machine word stored in physical memory. It is wide enough to
// hold any frame index, so page-table slots and data share the same type.
type Word int64

// Geometry defines the shape of the virtual and physical address spaces. All
// sizes are derived from the three widths.
type Geometry struct {
	OffsetWidth          uint64
	PhysicalAddressWidth uint64
	VirtualAddressWidth  uint64
}

// PageSize returns the number of words in a page, which is also the number of
// slots in a page-table node.
func (g Geometry) PageSize() uint64 {
	return 1 << g.OffsetWidth
}

// NumFrames returns the number of frames in the physical memory.
func (g Geometry) NumFrames() uint64 {
	return 1 << (g.PhysicalAddressWidth - g.OffsetWidth)
}

// VirtualMemorySize returns the number of addressable words in the virtual
// address space.
func (g Geometry) VirtualMemorySize() uint64 {
	return 1 << g.VirtualAddressWidth
}

// NumPages returns the number of pages in the virtual address space.
func (g Geometry) NumPages() uint64 {
	return g.VirtualMemorySize() / g.PageSize()
}

// TablesDepth returns the number of page-table levels between the root frame
// and the data pages.
func (g Geometry) TablesDepth() uint64 {
	pageNumberWidth := g.VirtualAddressWidth - g.OffsetWidth
	return (pageNumberWidth + g.OffsetWidth - 1) / g.OffsetWidth
}

// Validate checks that the widths describe a workable memory system. The
// physical memory must hold at least two frames, the root table plus one
// usable frame.
func (g Geometry) Validate() error {
	if g.OffsetWidth < 1 {
		return fmt.Errorf("offset width must be at least 1, got %d",
			g.OffsetWidth)
	}

	if g.PhysicalAddressWidth <= g.OffsetWidth {
		return fmt.Errorf(
			"physical address width %d must be larger than offset width %d",
			g.PhysicalAddressWidth, g.OffsetWidth)
	}

	if g.VirtualAddressWidth <= g.OffsetWidth {
		return fmt.Errorf(
			"virtual address width %d must be larger than offset width %d",
			g.VirtualAddressWidth, g.OffsetWidth)
	}

	if g.NumFrames() < 2 {
		return fmt.Errorf("geometry must provide at least 2 frames, got %d",
			g.NumFrames())
	}

	return nil
}
