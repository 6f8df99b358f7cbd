package mem

import "github.com/sarchlab/vmsim/vm"

// A Swap is the secondary store that keeps the images of evicted pages,
// keyed by page number.
type Swap struct {
	pageSize uint64
	pages    map[uint64][]vm.Word
}

// NewSwap creates an empty swap device for pages of the given size.
func NewSwap(pageSize uint64) *Swap {
	return &Swap{
		pageSize: pageSize,
		pages:    make(map[uint64][]vm.Word),
	}
}

// PageOut saves a page image. A later PageOut of the same page replaces the
// earlier image.
func (s *Swap) PageOut(page uint64, data []vm.Word) {
	if uint64(len(data)) != s.pageSize {
		panic("page image size does not match the swap page size")
	}

	image := make([]vm.Word, s.pageSize)
	copy(image, data)
	s.pages[page] = image
}

// PageIn returns the saved image of a page. The second return value reports
// whether the page was ever paged out.
func (s *Swap) PageIn(page uint64) ([]vm.Word, bool) {
	image, ok := s.pages[page]
	if !ok {
		return nil, false
	}

	res := make([]vm.Word, s.pageSize)
	copy(res, image)

	return res, true
}

// NumPagesOut returns the number of distinct pages currently held.
func (s *Swap) NumPagesOut() int {
	return len(s.pages)
}
