package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/tracing"
	"github.com/sarchlab/vmsim/vm"
)

var runFlags struct {
	offsetWidth          uint64
	physicalAddressWidth uint64
	virtualAddressWidth  uint64

	numAccesses uint64
	pattern     string
	stride      uint64
	seed        int64

	traceFile   string
	traceFormat string

	monitorPort int
	openBrowser bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a synthetic access workload through the translator",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true
		runWorkload()
	},
}

func init() {
	// The flag defaults below read VMSIM_* variables, so a .env file has to
	// be loaded before they are registered.
	_ = godotenv.Load()

	f := runCmd.Flags()

	f.Uint64Var(&runFlags.offsetWidth, "offset-width",
		envUint("VMSIM_OFFSET_WIDTH", 4),
		"bits of in-page offset")
	f.Uint64Var(&runFlags.physicalAddressWidth, "physical-address-width",
		envUint("VMSIM_PHYSICAL_ADDRESS_WIDTH", 10),
		"bits of a physical address")
	f.Uint64Var(&runFlags.virtualAddressWidth, "virtual-address-width",
		envUint("VMSIM_VIRTUAL_ADDRESS_WIDTH", 16),
		"bits of a virtual address")

	f.Uint64Var(&runFlags.numAccesses, "accesses", 10000,
		"number of write-read pairs to issue")
	f.StringVar(&runFlags.pattern, "pattern", "random",
		"access pattern: sequential, random, or stride")
	f.Uint64Var(&runFlags.stride, "stride", 64,
		"stride in words for the stride pattern")
	f.Int64Var(&runFlags.seed, "seed", 1,
		"seed for the random pattern")

	f.StringVar(&runFlags.traceFile, "trace", "",
		"record paging events to this file")
	f.StringVar(&runFlags.traceFormat, "trace-format", "sqlite",
		"trace backend: sqlite or csv")

	f.IntVar(&runFlags.monitorPort, "monitor", 0,
		"serve the monitoring API on this port")
	f.BoolVar(&runFlags.openBrowser, "open", false,
		"open the monitoring server in a browser")

	rootCmd.AddCommand(runCmd)
}

func envUint(name string, fallback uint64) uint64 {
	s, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		log.Fatalf("cannot parse %s=%q: %v", name, s, err)
	}

	return v
}

func runWorkload() {
	geometry := vm.Geometry{
		OffsetWidth:          runFlags.offsetWidth,
		PhysicalAddressWidth: runFlags.physicalAddressWidth,
		VirtualAddressWidth:  runFlags.virtualAddressWidth,
	}
	if err := geometry.Validate(); err != nil {
		log.Fatalf("invalid geometry: %v", err)
	}

	tracer := buildTracer()

	memory := mem.MakeBuilder().
		WithPageSize(geometry.PageSize()).
		WithNumFrames(geometry.NumFrames()).
		WithTracer(tracer).
		Build("PhysMem")

	translator := vm.MakeBuilder().
		WithGeometry(geometry).
		WithMemory(memory).
		WithTracer(tracer).
		Build("Translator")

	translator.Initialize()

	startMonitor(translator, memory)

	issueAccesses(translator, geometry)

	reportStats(translator, memory)

	atexit.Exit(0)
}

func buildTracer() tracing.Tracer {
	if runFlags.traceFile == "" {
		return nil
	}

	switch runFlags.traceFormat {
	case "sqlite":
		w := tracing.NewSQLiteTraceWriter(runFlags.traceFile)
		w.Init()
		return w
	case "csv":
		w := tracing.NewCSVTracerBackend(runFlags.traceFile)
		w.Init()
		return w
	default:
		log.Fatalf("unknown trace format %q", runFlags.traceFormat)
		return nil
	}
}

func startMonitor(translator *vm.Comp, memory *mem.Comp) {
	if runFlags.monitorPort == 0 {
		return
	}

	monitor := monitoring.NewMonitor().
		WithPortNumber(runFlags.monitorPort)
	monitor.RegisterTranslator(translator)
	monitor.RegisterMemory(memory)
	url := monitor.StartServer()

	if runFlags.openBrowser {
		err := browser.OpenURL(url)
		if err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}
}

func issueAccesses(translator *vm.Comp, geometry vm.Geometry) {
	rng := rand.New(rand.NewSource(runFlags.seed))
	size := geometry.VirtualMemorySize()

	mismatches := 0
	for i := uint64(0); i < runFlags.numAccesses; i++ {
		var addr uint64
		switch runFlags.pattern {
		case "sequential":
			addr = i % size
		case "random":
			addr = rng.Uint64() % size
		case "stride":
			addr = (i * runFlags.stride) % size
		default:
			log.Fatalf("unknown pattern %q", runFlags.pattern)
		}

		value := vm.Word(i)
		if !translator.Write(addr, value) {
			log.Fatalf("write to address 0x%x failed", addr)
		}

		got, ok := translator.Read(addr)
		if !ok {
			log.Fatalf("read from address 0x%x failed", addr)
		}
		if got != value {
			mismatches++
		}
	}

	if mismatches > 0 {
		log.Fatalf("%d read-after-write mismatches", mismatches)
	}
}

func reportStats(translator *vm.Comp, memory *mem.Comp) {
	stats := translator.Stats()

	fmt.Printf("accesses:   %d\n", stats.Accesses)
	fmt.Printf("faults:     %d\n", stats.Faults)
	fmt.Printf("  reclaimed: %d\n", stats.Reclaimed)
	fmt.Printf("  fresh:     %d\n", stats.Fresh)
	fmt.Printf("  evicted:   %d\n", stats.Evictions)
	fmt.Printf("pages out:  %d\n", memory.Swap().NumPagesOut())
}
