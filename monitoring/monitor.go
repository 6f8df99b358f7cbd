// Package monitoring turns a running simulation into a small web server so
// the page-table tree, the frame store, and the paging counters can be
// inspected from outside the process.
package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

// A Component is anything the monitor can serialize by name.
type Component interface {
	Name() string
}

// Monitor exposes a translator and its physical memory over HTTP.
type Monitor struct {
	portNumber int
	translator *vm.Comp
	memory     *mem.Comp
	components []Component
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterTranslator registers the translator to be monitored.
func (m *Monitor) RegisterTranslator(c *vm.Comp) {
	m.translator = c
	m.components = append(m.components, c)
}

// RegisterMemory registers the physical memory to be monitored.
func (m *Monitor) RegisterMemory(c *mem.Comp) {
	m.memory = c
	m.components = append(m.components, c)
}

// StartServer starts the monitor as a web server, on the configured port or
// on a random one when no port is set. It returns the address the server
// listens on.
func (m *Monitor) StartServer() string {
	r := m.createRouter()

	actualPort := ":0"
	if m.portNumber >= 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(os.Stderr,
		"Monitoring simulation with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()

	return fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
}

func (m *Monitor) createRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/geometry", m.geometry)
	r.HandleFunc("/api/stats", m.stats)
	r.HandleFunc("/api/frames", m.frames)
	r.HandleFunc("/api/tree", m.tree)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/resource", m.listResources)

	return r
}

func (m *Monitor) geometry(w http.ResponseWriter, _ *http.Request) {
	g := m.translator.Geometry()

	rsp := map[string]uint64{
		"offset_width":           g.OffsetWidth,
		"physical_address_width": g.PhysicalAddressWidth,
		"virtual_address_width":  g.VirtualAddressWidth,
		"page_size":              g.PageSize(),
		"num_frames":             g.NumFrames(),
		"num_pages":              g.NumPages(),
		"tables_depth":           g.TablesDepth(),
	}

	m.writeJSON(w, rsp)
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	s := m.translator.Stats()

	rsp := map[string]uint64{
		"accesses":  s.Accesses,
		"faults":    s.Faults,
		"reclaimed": s.Reclaimed,
		"fresh":     s.Fresh,
		"evictions": s.Evictions,
		"pages_out": uint64(m.memory.Swap().NumPagesOut()),
	}

	m.writeJSON(w, rsp)
}

func (m *Monitor) frames(w http.ResponseWriter, _ *http.Request) {
	pageSize := m.memory.PageSize()

	frames := make([][]vm.Word, m.memory.NumFrames())
	for f := range frames {
		frame := make([]vm.Word, pageSize)
		for i := uint64(0); i < pageSize; i++ {
			frame[i] = m.memory.Read(uint64(f)*pageSize + i)
		}
		frames[f] = frame
	}

	m.writeJSON(w, frames)
}

// treeNode is the JSON shape of one page-table node.
type treeNode struct {
	Frame    uint64               `json:"frame"`
	Children map[uint64]*treeNode `json:"children,omitempty"`
	Page     *uint64              `json:"page,omitempty"`
}

func (m *Monitor) tree(w http.ResponseWriter, _ *http.Request) {
	root := m.collectTree(0, 0, 0)
	m.writeJSON(w, root)
}

func (m *Monitor) collectTree(frame, virt, depth uint64) *treeNode {
	g := m.translator.Geometry()
	node := &treeNode{Frame: frame}

	if depth == g.TablesDepth() {
		page := virt
		node.Page = &page
		return node
	}

	for i := uint64(0); i < g.PageSize(); i++ {
		child := m.memory.Read(frame*g.PageSize() + i)
		if child == 0 {
			continue
		}

		if node.Children == nil {
			node.Children = make(map[uint64]*treeNode)
		}

		node.Children[i] = m.collectTree(uint64(child),
			virt<<g.OffsetWidth|i, depth+1)
	}

	return node
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, c := range m.components {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "%q", c.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) Component {
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)

	return nil
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	p, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := p.CPUPercent()
	dieOnErr(err)

	memInfo, err := p.MemoryInfo()
	dieOnErr(err)

	rsp := map[string]float64{
		"cpu_percent": cpuPercent,
		"rss":         float64(memInfo.RSS),
	}

	m.writeJSON(w, rsp)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
