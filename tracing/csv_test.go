package tracing_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/tracing"
)

var _ = Describe("Event", func() {
	It("should stamp events with unique IDs", func() {
		e1 := tracing.NewEvent(tracing.KindFault, "fresh", "Translator")
		e2 := tracing.NewEvent(tracing.KindEvict, "page out", "PhysMem")

		Expect(e1.ID).ToNot(BeEmpty())
		Expect(e2.ID).ToNot(BeEmpty())
		Expect(e1.ID).ToNot(Equal(e2.ID))
		Expect(e1.Kind).To(Equal("fault"))
		Expect(e2.Where).To(Equal("PhysMem"))
	})
})

var _ = Describe("CSVTracerBackend", func() {
	It("should write flushed events to the file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "trace.csv")

		backend := tracing.NewCSVTracerBackend(path)
		backend.Init()

		e := tracing.NewEvent(tracing.KindRestore, "page in", "PhysMem")
		e.Page = 12
		e.Frame = 3
		backend.Record(e)
		backend.Flush()

		content, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring("ID, Kind, What, Where"))
		Expect(lines[1]).To(ContainSubstring("restore"))
		Expect(lines[1]).To(ContainSubstring("page in"))
		Expect(lines[1]).To(ContainSubstring(" 12, 3,"))
	})
})
