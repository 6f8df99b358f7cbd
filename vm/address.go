package vm

// splitAddress decomposes a virtual address into one page-table slot index
// per tree level plus the final in-page offset. The slice has
// TablesDepth()+1 elements; element 0 indexes a slot of the root table and
// the last element is the offset within the data page.
func splitAddress(g Geometry, vAddr uint64) []uint64 {
	offsets := make([]uint64, g.TablesDepth()+1)

	for i := int(g.TablesDepth()); i >= 0; i-- {
		offsets[i] = vAddr & (g.PageSize() - 1)
		vAddr >>= g.OffsetWidth
	}

	return offsets
}
