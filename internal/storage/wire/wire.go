// Package wire encodes and decodes layout.Model as the stable
// normalized-layout JSON named in spec.md §6, used both as a CSV-adjacent
// export format and to resume a session without re-parsing the vendor XML.
// Grounded on the JSON-with-pointer-field conventions of
// internal/config/tuning.go, extended here with the dual from/to/node_id
// vs. start/end/node key acceptance spec.md §6 requires on the ingest side.
package wire

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/junryge/ASAS/internal/layout"
)

type boundsJSON struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

type addressJSON struct {
	ID          int     `json:"id"`
	DrawX       float64 `json:"draw_x"`
	DrawY       float64 `json:"draw_y"`
	HasCAD      bool    `json:"has_cad"`
	CADX        float64 `json:"cad_x"`
	CADY        float64 `json:"cad_y"`
	Symbol      string  `json:"symbol"`
	IsStation   bool    `json:"is_station"`
	IsBranch    bool    `json:"is_branch"`
	IsJunction  bool    `json:"is_junction"`
	HIDIncluded int     `json:"hid_included"`
	StopZone    int     `json:"stop_zone"`
}

// edgeJSON accepts both the canonical from/to and the alternative
// start/end spellings on decode.
type edgeJSON struct {
	From            int     `json:"from"`
	To              int     `json:"to"`
	Start           int     `json:"start,omitempty"`
	End             int     `json:"end,omitempty"`
	Distance        float64 `json:"distance"`
	Speed           int     `json:"speed"`
	Direction       int     `json:"direction"`
	BranchDirection int     `json:"branch_direction"`
}

func (e *edgeJSON) resolvedFrom() int {
	if e.From != 0 {
		return e.From
	}
	return e.Start
}

func (e *edgeJSON) resolvedTo() int {
	if e.To != 0 {
		return e.To
	}
	return e.End
}

// stationJSON accepts both node_id (canonical) and node (alternative).
type stationJSON struct {
	PortID   string  `json:"port_id"`
	Category int     `json:"category"`
	Kind     int     `json:"kind"`
	Number   int     `json:"number"`
	Position int     `json:"position"`
	NodeID   int     `json:"node_id,omitempty"`
	Node     int     `json:"node,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

func (s *stationJSON) resolvedAddressID() int {
	if s.NodeID != 0 {
		return s.NodeID
	}
	return s.Node
}

type laneJSON struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	StopNo    int    `json:"stop_no"`
	StopZCU   string `json:"stop_zcu"`
	CountType bool   `json:"count_type"`
}

type mcpZoneJSON struct {
	ID                int        `json:"id"`
	No                int        `json:"no"`
	Name              string     `json:"name"`
	VehicleMax        int        `json:"vehicle_max"`
	VehiclePrecaution int        `json:"vehicle_precaution"`
	Type              int        `json:"type"`
	CutLanes          []laneJSON `json:"cut_lanes"`
	Entries           []laneJSON `json:"entries"`
	Exits             []laneJSON `json:"exits"`
}

type hidLabelJSON struct {
	Name      string  `json:"name"`
	MachineID string  `json:"machine_id"`
	Address   int     `json:"address"`
	DrawX     float64 `json:"draw_x"`
	DrawY     float64 `json:"draw_y"`
	Point     int     `json:"point"`
}

type hidMasterJSON struct {
	HIDID             string `json:"hid_id"`
	MachineID         string `json:"machine_id"`
	Address           int    `json:"address"`
	VehicleMax        int    `json:"vehicle_max"`
	VehiclePrecaution int    `json:"vehicle_precaution"`
	Type              int    `json:"type"`
	EntryCount        int    `json:"entry_count"`
	ExitCount         int    `json:"exit_count"`
	EntrySummary      string `json:"entry_summary"`
	ExitSummary       string `json:"exit_summary"`
	FirstEntryZCU     string `json:"first_entry_zcu"`
}

type documentJSON struct {
	FabName     string           `json:"fab_name"`
	Bounds      boundsJSON       `json:"bounds"`
	Nodes       []addressJSON    `json:"nodes"`
	Edges       []edgeJSON       `json:"edges"`
	Stations    []stationJSON    `json:"stations"`
	MCPZones    []mcpZoneJSON    `json:"mcp_zones"`
	HIDZones    []hidLabelJSON   `json:"hid_zones"`
	HIDMaster   []hidMasterJSON  `json:"hid_master"`
	ZoneAddrMap map[string][]int `json:"zone_addr_map"`

	TotalNodes    int `json:"total_nodes"`
	TotalEdges    int `json:"total_edges"`
	TotalStations int `json:"total_stations"`
	TotalMCPZones int `json:"total_mcp_zones"`
	TotalHIDZones int `json:"total_hid_zones"`
}

// Encode writes model as the stable normalized-layout JSON to w.
func Encode(w io.Writer, model *layout.Model) error {
	doc := documentJSON{
		FabName: model.FabName,
		Bounds: boundsJSON{
			MinX: model.Bounds.MinX, MaxX: model.Bounds.MaxX,
			MinY: model.Bounds.MinY, MaxY: model.Bounds.MaxY,
		},
	}

	for _, a := range model.Addresses {
		doc.Nodes = append(doc.Nodes, addressJSON{
			ID: a.ID, DrawX: a.DrawX, DrawY: a.DrawY, HasCAD: a.HasCAD, CADX: a.CADX, CADY: a.CADY,
			Symbol: a.Symbol, IsStation: a.IsStation, IsBranch: a.IsBranch, IsJunction: a.IsJunction,
			HIDIncluded: a.HIDIncluded, StopZone: a.StopZone,
		})
	}
	for _, e := range model.Edges {
		doc.Edges = append(doc.Edges, edgeJSON{
			From: e.From, To: e.To, Distance: e.Distance, Speed: e.Speed,
			Direction: e.Direction, BranchDirection: e.BranchDirection,
		})
	}
	for _, s := range model.Stations {
		doc.Stations = append(doc.Stations, stationJSON{
			PortID: s.PortID, Category: s.Category, Kind: int(s.Kind), Number: s.Number,
			Position: s.Position, NodeID: s.AddressID, X: s.X, Y: s.Y,
		})
	}
	for _, z := range model.Zones {
		doc.MCPZones = append(doc.MCPZones, mcpZoneJSON{
			ID: z.ID, No: z.No, Name: z.Name, VehicleMax: z.VehicleMax, VehiclePrecaution: z.VehiclePrecaution,
			Type: z.Type, CutLanes: lanesToJSON(z.CutLanes), Entries: lanesToJSON(z.Entries), Exits: lanesToJSON(z.Exits),
		})
	}
	for _, h := range model.HIDLabels {
		doc.HIDZones = append(doc.HIDZones, hidLabelJSON{
			Name: h.Name, MachineID: h.MachineID, Address: h.Address, DrawX: h.DrawX, DrawY: h.DrawY, Point: h.Point,
		})
	}
	for _, h := range model.HIDMaster {
		doc.HIDMaster = append(doc.HIDMaster, hidMasterJSON{
			HIDID: h.HIDID, MachineID: h.MachineID, Address: h.Address, VehicleMax: h.VehicleMax,
			VehiclePrecaution: h.VehiclePrecaution, Type: h.Type, EntryCount: h.EntryCount, ExitCount: h.ExitCount,
			EntrySummary: h.EntrySummary, ExitSummary: h.ExitSummary, FirstEntryZCU: h.FirstEntryZCU,
		})
	}
	if len(model.ZoneAddrMap) > 0 {
		doc.ZoneAddrMap = make(map[string][]int, len(model.ZoneAddrMap))
		for zoneID, addrs := range model.ZoneAddrMap {
			doc.ZoneAddrMap[fmt.Sprintf("%d", zoneID)] = addrs
		}
	}

	totals := model.Totals()
	doc.TotalNodes, doc.TotalEdges, doc.TotalStations = totals.TotalNodes, totals.TotalEdges, totals.TotalStations
	doc.TotalMCPZones, doc.TotalHIDZones = totals.TotalMCPZones, totals.TotalHIDZones

	enc := json.NewEncoder(w)
	return enc.Encode(doc)
}

func lanesToJSON(lanes []layout.Lane) []laneJSON {
	out := make([]laneJSON, len(lanes))
	for i, l := range lanes {
		out[i] = laneJSON{Start: l.Start, End: l.End, StopNo: l.StopNo, StopZCU: l.StopZCU, CountType: l.CountType}
	}
	return out
}

func lanesFromJSON(lanes []laneJSON) []layout.Lane {
	out := make([]layout.Lane, len(lanes))
	for i, l := range lanes {
		out[i] = layout.Lane{Start: l.Start, End: l.End, StopNo: l.StopNo, StopZCU: l.StopZCU, CountType: l.CountType}
	}
	return out
}

// Decode reads the normalized-layout JSON from r into a fresh layout.Model,
// accepting both documented edge/station key spellings.
func Decode(r io.Reader) (*layout.Model, error) {
	var doc documentJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode layout JSON: %w", err)
	}

	model := layout.NewModel()
	model.FabName = doc.FabName
	model.Bounds = layout.Bounds{MinX: doc.Bounds.MinX, MaxX: doc.Bounds.MaxX, MinY: doc.Bounds.MinY, MaxY: doc.Bounds.MaxY}

	for _, n := range doc.Nodes {
		model.Addresses[n.ID] = &layout.Address{
			ID: n.ID, DrawX: n.DrawX, DrawY: n.DrawY, HasCAD: n.HasCAD, CADX: n.CADX, CADY: n.CADY,
			Symbol: n.Symbol, IsStation: n.IsStation, IsBranch: n.IsBranch, IsJunction: n.IsJunction,
			HIDIncluded: n.HIDIncluded, StopZone: n.StopZone,
		}
	}
	for _, e := range doc.Edges {
		model.Edges = append(model.Edges, layout.Edge{
			From: e.resolvedFrom(), To: e.resolvedTo(), Distance: e.Distance, Speed: e.Speed,
			Direction: e.Direction, BranchDirection: e.BranchDirection,
		})
	}
	for _, s := range doc.Stations {
		model.Stations = append(model.Stations, layout.Station{
			PortID: s.PortID, Category: s.Category, Kind: layout.StationKind(s.Kind), Number: s.Number,
			Position: s.Position, AddressID: s.resolvedAddressID(), X: s.X, Y: s.Y,
		})
	}
	for _, z := range doc.MCPZones {
		model.Zones[z.ID] = &layout.MCPZone{
			ID: z.ID, No: z.No, Name: z.Name, VehicleMax: z.VehicleMax, VehiclePrecaution: z.VehiclePrecaution,
			Type: z.Type, CutLanes: lanesFromJSON(z.CutLanes), Entries: lanesFromJSON(z.Entries), Exits: lanesFromJSON(z.Exits),
		}
	}
	for _, h := range doc.HIDZones {
		model.HIDLabels = append(model.HIDLabels, layout.HIDLabel{
			Name: h.Name, MachineID: h.MachineID, Address: h.Address, DrawX: h.DrawX, DrawY: h.DrawY, Point: h.Point,
		})
	}
	for _, h := range doc.HIDMaster {
		model.HIDMaster = append(model.HIDMaster, layout.HIDMaster{
			HIDID: h.HIDID, MachineID: h.MachineID, Address: h.Address, VehicleMax: h.VehicleMax,
			VehiclePrecaution: h.VehiclePrecaution, Type: h.Type, EntryCount: h.EntryCount, ExitCount: h.ExitCount,
			EntrySummary: h.EntrySummary, ExitSummary: h.ExitSummary, FirstEntryZCU: h.FirstEntryZCU,
		})
	}
	for zoneIDStr, addrs := range doc.ZoneAddrMap {
		var zoneID int
		if _, err := fmt.Sscanf(zoneIDStr, "%d", &zoneID); err != nil {
			continue
		}
		model.ZoneAddrMap[zoneID] = addrs
	}

	return model, nil
}
