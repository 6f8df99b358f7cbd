package vm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

func buildSystem(g vm.Geometry) (*vm.Comp, *mem.Comp) {
	memory := mem.MakeBuilder().
		WithPageSize(g.PageSize()).
		WithNumFrames(g.NumFrames()).
		Build("PhysMem")

	translator := vm.MakeBuilder().
		WithGeometry(g).
		WithMemory(memory).
		Build("Translator")
	translator.Initialize()

	return translator, memory
}

var _ = Describe("Comp", func() {
	Context("with a single table level and four frames", func() {
		var (
			geometry   vm.Geometry
			translator *vm.Comp
		)

		BeforeEach(func() {
			geometry = vm.Geometry{
				OffsetWidth:          4,
				PhysicalAddressWidth: 6,
				VirtualAddressWidth:  8,
			}
			translator, _ = buildSystem(geometry)
		})

		It("should read zero from a never-written address", func() {
			value, ok := translator.Read(0)

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal(vm.Word(0)))
		})

		It("should read back a written word", func() {
			Expect(translator.Write(0, 42)).To(BeTrue())

			value, ok := translator.Read(0)

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal(vm.Word(42)))
		})

		It("should keep the last of two writes to one address", func() {
			Expect(translator.Write(7, 1)).To(BeTrue())
			Expect(translator.Write(7, 2)).To(BeTrue())

			value, ok := translator.Read(7)

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal(vm.Word(2)))
		})

		It("should bring an evicted page back with its data", func() {
			// Pages 0 to 3 fight over the three non-root frames; the fourth
			// write evicts page 0.
			Expect(translator.Write(0, 1)).To(BeTrue())
			Expect(translator.Write(16, 2)).To(BeTrue())
			Expect(translator.Write(32, 3)).To(BeTrue())
			Expect(translator.Write(48, 4)).To(BeTrue())

			value, ok := translator.Read(0)

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal(vm.Word(1)))
			Expect(translator.Stats().Evictions).To(BeNumerically(">", 0))
		})

		It("should not clobber a low page when capacity suffices", func() {
			Expect(translator.Write(0, 7)).To(BeTrue())
			Expect(translator.Write(geometry.PageSize()*8, 9)).To(BeTrue())

			value, ok := translator.Read(0)

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal(vm.Word(7)))
		})

		It("should reject an address beyond the virtual memory", func() {
			value, ok := translator.Read(geometry.VirtualMemorySize())
			Expect(ok).To(BeFalse())
			Expect(value).To(Equal(vm.Word(0)))

			Expect(translator.Write(geometry.VirtualMemorySize(), 1)).
				To(BeFalse())
			Expect(translator.Stats().Accesses).To(Equal(uint64(0)))
		})

		It("should survive writing and reading every page", func() {
			for p := uint64(0); p < geometry.NumPages(); p++ {
				Expect(translator.Write(p*geometry.PageSize(),
					vm.Word(p))).To(BeTrue())
			}

			for p := uint64(0); p < geometry.NumPages(); p++ {
				value, ok := translator.Read(p * geometry.PageSize())

				Expect(ok).To(BeTrue())
				Expect(value).To(Equal(vm.Word(p)))
			}
		})

		It("should never hand out the root frame", func() {
			churned, memory := buildSystem(geometry)

			for p := uint64(0); p < geometry.NumPages(); p++ {
				churned.Write(p*geometry.PageSize(), vm.Word(p+100))
			}

			// Every mapped slot of the root must point at one of the three
			// usable frames, never back at the root.
			for i := uint64(0); i < geometry.PageSize(); i++ {
				slot := memory.Read(i)
				if slot == 0 {
					continue
				}

				Expect(slot).To(BeNumerically(">=", 1))
				Expect(slot).To(BeNumerically("<", geometry.NumFrames()))
			}
		})
	})

	Context("with four table levels and heavy churn", func() {
		It("should keep every page's data through eviction", func() {
			geometry := vm.Geometry{
				OffsetWidth:          2,
				PhysicalAddressWidth: 6,
				VirtualAddressWidth:  10,
			}
			translator, memory := buildSystem(geometry)

			for p := uint64(0); p < geometry.NumPages(); p++ {
				Expect(translator.Write(p*geometry.PageSize(),
					vm.Word(p)+1)).To(BeTrue())
			}

			for p := uint64(0); p < geometry.NumPages(); p++ {
				value, ok := translator.Read(p * geometry.PageSize())

				Expect(ok).To(BeTrue())
				Expect(value).To(Equal(vm.Word(p) + 1))
			}

			Expect(translator.Stats().Reclaimed).To(
				BeNumerically(">", 0),
				"deep churn must recycle empty table nodes")
			Expect(memory.Swap().NumPagesOut()).To(
				BeNumerically(">", 0))
		})

		It("should write and read back across a scattered address set",
			func() {
				geometry := vm.Geometry{
					OffsetWidth:          3,
					PhysicalAddressWidth: 8,
					VirtualAddressWidth:  12,
				}
				translator, _ := buildSystem(geometry)

				addrs := []uint64{0, 5, 63, 64, 511, 512, 1023, 2048, 4095}
				for i, a := range addrs {
					Expect(translator.Write(a, vm.Word(i)*3)).To(BeTrue())
				}

				for i, a := range addrs {
					value, ok := translator.Read(a)

					Expect(ok).To(BeTrue())
					Expect(value).To(Equal(vm.Word(i) * 3))
				}
			})
	})
})
