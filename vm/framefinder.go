package vm

// PlacementKind tells how a frame returned by a FrameFinder was obtained.
type PlacementKind int

// The three ways a frame can be acquired, in decreasing order of preference.
const (
	// PlacementReclaimed is an empty page-table node that was unlinked from
	// its parent. Its slots are already all zero.
	PlacementReclaimed PlacementKind = iota + 1

	// PlacementFresh is a frame that has never been referenced by the tree.
	PlacementFresh

	// PlacementEvicted is a frame whose resident page was written out to the
	// secondary store.
	PlacementEvicted
)

// A Placement is the result of a frame search.
type Placement struct {
	Frame uint64
	Kind  PlacementKind
}

// A FrameFinder selects the physical frame that will back a page-table slot
// that is about to be filled. The protected frame is the table node the
// caller is extending; it must never be selected. The page is the virtual
// page the caller is mapping, used by distance-based replacement policies.
//
// The finder owns all bookkeeping needed to make the returned frame safe to
// install: a reclaimed node is unlinked from its old parent, an evicted
// frame has its page saved and its old parent slot zeroed.
type FrameFinder interface {
	FindFrame(protected uint64, page uint64) Placement
}

// A cyclicFrameFinder walks the whole page-table tree once per search. The
// single depth-first pass simultaneously looks for an empty table node to
// reclaim, tracks the highest frame index in use so a fresh frame can be
// taken, and scores every resident page under the cyclic-distance metric in
// case an eviction is needed.
type cyclicFrameFinder struct {
	geometry Geometry
	memory   PhysicalMemory
}

func newCyclicFrameFinder(g Geometry, m PhysicalMemory) *cyclicFrameFinder {
	return &cyclicFrameFinder{
		geometry: g,
		memory:   m,
	}
}

// A frameSearch accumulates the state of one depth-first pass.
type frameSearch struct {
	protected uint64
	page      uint64

	maxFrame uint64

	emptyFrame uint64
	reclaimed  bool

	victimFrame      uint64
	victimPage       uint64
	victimDist       uint64
	victimParentSlot uint64
}

// FindFrame runs the depth-first pass and applies the priority rule: reclaim
// an empty table node if one exists, otherwise take the frame just above the
// highest frame index referenced by the tree, otherwise evict the resident page farthest from the requested
// page on the page-number ring.
func (f *cyclicFrameFinder) FindFrame(protected, page uint64) Placement {
	s := &frameSearch{
		protected: protected,
		page:      page,
	}

	f.walk(s, 0, 0, 0, 0, 0)

	if s.reclaimed {
		return Placement{Frame: s.emptyFrame, Kind: PlacementReclaimed}
	}

	if s.maxFrame+1 < f.geometry.NumFrames() {
		return Placement{Frame: s.maxFrame + 1, Kind: PlacementFresh}
	}

	f.memory.Write(s.victimParentSlot, 0)
	f.memory.Evict(s.victimFrame, s.victimPage)

	return Placement{Frame: s.victimFrame, Kind: PlacementEvicted}
}

// walk visits the subtree rooted at frame. virt is the page-number prefix
// accumulated along the path, parent the frame holding the slot that points
// here, and slot its index within the parent. Leaves sit at depth
// TablesDepth and are scored as eviction candidates; every shallower frame
// is a table node and is checked for emptiness on entry, before its
// children.
func (f *cyclicFrameFinder) walk(
	s *frameSearch,
	frame, virt, parent, depth, slot uint64,
) {
	pageSize := f.geometry.PageSize()

	if depth == f.geometry.TablesDepth() {
		f.scoreVictim(s, frame, virt, parent, slot)
		return
	}

	empty := true
	for i := uint64(0); i < pageSize; i++ {
		if f.memory.Read(frame*pageSize+i) != 0 {
			empty = false
			break
		}
	}

	if frame != 0 && frame != s.protected && empty {
		s.emptyFrame = frame
		f.memory.Write(parent*pageSize+slot, 0)
		s.reclaimed = true
		return
	}

	for i := uint64(0); i < pageSize; i++ {
		next := f.memory.Read(frame*pageSize + i)
		if next == 0 {
			continue
		}

		if uint64(next) >= s.maxFrame {
			s.maxFrame = uint64(next)
		}

		f.walk(s, uint64(next), virt<<f.geometry.OffsetWidth|i,
			frame, depth+1, i)

		if s.reclaimed {
			return
		}
	}
}

// scoreVictim records the leaf as the current eviction candidate if its page
// is at least as far from the requested page as the best seen so far. The >=
// keeps the last candidate in walk order on ties.
func (f *cyclicFrameFinder) scoreVictim(
	s *frameSearch,
	frame, virt, parent, slot uint64,
) {
	dist := cyclicDistance(s.page, virt, f.geometry.NumPages())
	if dist >= s.victimDist {
		s.victimFrame = frame
		s.victimDist = dist
		s.victimPage = virt
		s.victimParentSlot = parent*f.geometry.PageSize() + slot
	}
}

// cyclicDistance returns the shorter arc between two page numbers on a ring
// of numPages pages.
func cyclicDistance(p1, p2, numPages uint64) uint64 {
	var d uint64
	if p1 > p2 {
		d = p1 - p2
	} else {
		d = p2 - p1
	}

	if d < numPages-d {
		return d
	}

	return numPages - d
}
