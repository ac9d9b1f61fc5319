// Package layout holds the normalized, typed representation of an ingested
// OHT rail layout: addresses, directed edges, stations, MCP zones, and HID
// bindings. Types here are immutable once committed by the parser and
// post-processor; nothing in this package mutates a Model.
package layout

// InvalidAddressID is the reserved sentinel for "no address" / "not found".
const InvalidAddressID = 0

// StationKind classifies the access mode of a Station, restored from the
// original vendor simulator (OHT2/simulator/core/models.py StationType) which
// the distilled layout schema collapses into a bare numeric type code.
type StationKind int

const (
	StationKindUnknown StationKind = iota
	StationKindDualAccess
	StationKindZFSRight
	StationKindZFSLeft
	StationKindUniversal
	StationKindAcquire
	StationKindMaintenance
	StationKindDeposit
	StationKindManualOnly
	StationKindDummy
	StationKindMTLSwitchback
	StationKindMTLElevator
)

// Address is a rail node: a point vehicles can occupy or route through.
type Address struct {
	ID           int
	DrawX, DrawY float64
	HasCAD       bool
	CADX, CADY   float64
	Symbol       string
	IsStation    bool
	IsBranch     bool
	IsJunction   bool
	HIDIncluded  int // -1 = not included
	StopZone     int
	Stations     []Station // embedded at ingest time; flattened by PostProcessor
}

// Edge is a directed rail segment, origin -> destination.
type Edge struct {
	From, To        int
	Distance        float64 // pulse units; used as PathFinder weight
	Speed           int     // vendor speed code, 1-32
	Direction       int     // 0 = bidirectional semantics, 1 = one-way
	BranchDirection int
}

// Station is a vendor port attached to an Address.
type Station struct {
	PortID    string
	Category  int
	Kind      StationKind
	Number    int
	Position  int // "position code" from the vendor schema
	AddressID int
	X, Y      float64 // cached copy of the owning Address's draw coordinates
}

// Lane is a {start, end} pair used by MCPZone cut-lanes/entries/exits.
type Lane struct {
	Start, End int
	StopNo     int
	StopZCU    string
	CountType  bool
}

// MCPZone is a Material Control Point admission-controlled rail region.
type MCPZone struct {
	ID                 int
	No                 int
	Name               string
	VehicleMax         int
	VehiclePrecaution  int
	Type               int
	CutLanes           []Lane
	Entries            []Lane
	Exits              []Lane
}

// HIDLabel is a visual label for an equipment interface.
type HIDLabel struct {
	Name      string
	MachineID string // "HID-<hid_id>(<suffix>)"
	Address   int
	DrawX     float64
	DrawY     float64
	Point     int
}

// HIDControl associates a short HID id with an MCP zone number (parser
// intermediate, consumed by the PostProcessor's HID master join).
type HIDControl struct {
	HIDID     string
	MCPZoneNo int
}

// HIDMaster is the derived join of HIDControl + MCPZone + HIDLabel.
type HIDMaster struct {
	HIDID          string
	MachineID      string // blank "HID-<hid_id>" if no label matched
	Address        int
	VehicleMax     int
	VehiclePrecaution int
	Type           int
	EntryCount     int
	ExitCount      int
	EntrySummary   string // "start→end; start→end; ..."
	ExitSummary    string
	FirstEntryZCU  string
}

// Bounds is the min/max draw-coordinate envelope of all committed addresses.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// Model is the normalized in-memory layout produced by the StreamingParser
// and enriched in place by the PostProcessor.
type Model struct {
	FabName string

	Addresses map[int]*Address // keyed by Address.ID
	Edges     []Edge
	Stations  []Station // flat table, populated by PostProcessor
	Zones     map[int]*MCPZone // keyed by MCPZone.ID
	HIDLabels []HIDLabel
	HIDControls []HIDControl
	HIDMaster []HIDMaster

	Bounds Bounds

	// ZoneAddrMap maps an MCPZone.ID to the set of address ids referenced by
	// any of its lanes (entries ∪ exits ∪ cut-lanes), populated by PostProcessor.
	ZoneAddrMap map[int][]int
}

// NewModel returns an empty Model ready to be filled in by the parser.
func NewModel() *Model {
	return &Model{
		Addresses:   make(map[int]*Address),
		Zones:       make(map[int]*MCPZone),
		ZoneAddrMap: make(map[int][]int),
	}
}

// AddressByID returns the Address with the given id, or nil if unknown.
func (m *Model) AddressByID(id int) *Address {
	return m.Addresses[id]
}

// Totals mirrors the wire-format summary counters (spec.md §6).
type Totals struct {
	TotalNodes    int
	TotalEdges    int
	TotalStations int
	TotalMCPZones int
	TotalHIDZones int
}

// Totals computes the summary counters over the current model state.
func (m *Model) Totals() Totals {
	return Totals{
		TotalNodes:    len(m.Addresses),
		TotalEdges:    len(m.Edges),
		TotalStations: len(m.Stations),
		TotalMCPZones: len(m.Zones),
		TotalHIDZones: len(m.HIDLabels),
	}
}
