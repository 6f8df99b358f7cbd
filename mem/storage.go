// Package mem provides the physical memory of the simulated system: a
// word-addressed frame store plus a swap device that holds evicted page
// images.
package mem

import (
	"errors"

	"github.com/sarchlab/vmsim/vm"
)

// A Storage keeps the words of the simulated physical memory.
//
// The storage manages its words in units of one frame. Frames that are never
// touched by Read and Write are not allocated.
type Storage struct {
	unitSize uint64
	capacity uint64
	units    map[uint64][]vm.Word
}

// NewStorage creates a storage that holds capacity words, allocated lazily
// in units of unitSize words.
func NewStorage(capacity, unitSize uint64) *Storage {
	return &Storage{
		unitSize: unitSize,
		capacity: capacity,
		units:    make(map[uint64][]vm.Word),
	}
}

var errOutOfCapacity = errors.New(
	"accessing physical address beyond the storage capacity")

func (s *Storage) unitFor(addr uint64) ([]vm.Word, uint64, error) {
	if addr >= s.capacity {
		return nil, 0, errOutOfCapacity
	}

	inUnitAddr := addr % s.unitSize
	baseAddr := addr - inUnitAddr

	unit, ok := s.units[baseAddr]
	if !ok {
		unit = make([]vm.Word, s.unitSize)
		s.units[baseAddr] = unit
	}

	return unit, inUnitAddr, nil
}

// Read returns the word at the given address.
func (s *Storage) Read(addr uint64) (vm.Word, error) {
	unit, inUnitAddr, err := s.unitFor(addr)
	if err != nil {
		return 0, err
	}

	return unit[inUnitAddr], nil
}

// Write stores a word at the given address.
func (s *Storage) Write(addr uint64, value vm.Word) error {
	unit, inUnitAddr, err := s.unitFor(addr)
	if err != nil {
		return err
	}

	unit[inUnitAddr] = value

	return nil
}

// ReadRange returns n consecutive words starting at addr.
func (s *Storage) ReadRange(addr, n uint64) ([]vm.Word, error) {
	res := make([]vm.Word, n)

	for i := uint64(0); i < n; i++ {
		w, err := s.Read(addr + i)
		if err != nil {
			return nil, err
		}
		res[i] = w
	}

	return res, nil
}

// WriteRange stores the words consecutively starting at addr.
func (s *Storage) WriteRange(addr uint64, data []vm.Word) error {
	for i, w := range data {
		if err := s.Write(addr+uint64(i), w); err != nil {
			return err
		}
	}

	return nil
}
