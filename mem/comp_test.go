package mem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("Swap", func() {
	It("should report pages that were never paged out", func() {
		swap := mem.NewSwap(4)

		_, ok := swap.PageIn(3)

		Expect(ok).To(BeFalse())
		Expect(swap.NumPagesOut()).To(Equal(0))
	})

	It("should keep the image of a paged-out page", func() {
		swap := mem.NewSwap(4)

		swap.PageOut(3, []vm.Word{1, 2, 3, 4})

		image, ok := swap.PageIn(3)
		Expect(ok).To(BeTrue())
		Expect(image).To(Equal([]vm.Word{1, 2, 3, 4}))
	})

	It("should keep the most recent image of a page", func() {
		swap := mem.NewSwap(2)

		swap.PageOut(0, []vm.Word{1, 2})
		swap.PageOut(0, []vm.Word{3, 4})

		image, _ := swap.PageIn(0)
		Expect(image).To(Equal([]vm.Word{3, 4}))
	})

	It("should copy images instead of sharing them", func() {
		swap := mem.NewSwap(2)
		data := []vm.Word{1, 2}

		swap.PageOut(0, data)
		data[0] = 99

		image, _ := swap.PageIn(0)
		Expect(image).To(Equal([]vm.Word{1, 2}))
	})
})

var _ = Describe("Comp", func() {
	var memory *mem.Comp

	BeforeEach(func() {
		memory = mem.MakeBuilder().
			WithPageSize(4).
			WithNumFrames(8).
			Build("PhysMem")
	})

	It("should read back written words", func() {
		memory.Write(5, 42)

		Expect(memory.Read(5)).To(Equal(vm.Word(42)))
	})

	It("should round-trip a page through evict and restore", func() {
		memory.Write(8, 1)
		memory.Write(9, 2)
		memory.Write(10, 3)
		memory.Write(11, 4)

		memory.Evict(2, 7)

		memory.Write(8, 0)
		memory.Write(9, 0)
		memory.Write(10, 0)
		memory.Write(11, 0)

		memory.Restore(2, 7)

		Expect(memory.Read(8)).To(Equal(vm.Word(1)))
		Expect(memory.Read(11)).To(Equal(vm.Word(4)))
	})

	It("should restore a never-evicted page as zeros", func() {
		memory.Write(12, 9)

		memory.Restore(3, 5)

		Expect(memory.Read(12)).To(Equal(vm.Word(0)))
	})

	It("should restore into a different frame than the one evicted from",
		func() {
			memory.Write(4, 11)
			memory.Write(7, 22)

			memory.Evict(1, 3)
			memory.Restore(6, 3)

			Expect(memory.Read(24)).To(Equal(vm.Word(11)))
			Expect(memory.Read(27)).To(Equal(vm.Word(22)))
		})

	It("should panic on an out-of-range access", func() {
		Expect(func() { memory.Read(32) }).To(Panic())
		Expect(func() { memory.Write(32, 1) }).To(Panic())
	})
})
