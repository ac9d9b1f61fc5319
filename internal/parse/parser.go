package parse

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/junryge/ASAS/internal/layout"
)

// ProgressFunc receives an approximate progress update roughly every 500
// committed addresses. The percent argument carries the running count of
// committed addresses, not a 0-100 share of the input.
type ProgressFunc func(message string, percent float64)

// groupKind is the small enum the parser dispatches on, replacing the
// vendor's bag-of-booleans with an explicit tagged accumulation context.
type groupKind int

const (
	kindUnknown groupKind = iota
	kindAddress
	kindNextAddr
	kindStation
	kindHIDControl
	kindHIDEntry
	kindMCPZoneControl
	kindMCPZone
	kindCutLane
	kindEntry
	kindExit
	kindHIDLabel
)

// classify maps a vendor class path to a groupKind. Order matters: the
// most specific substrings (CutLane/Entry/Exit, HidEntry, McpZoneControl)
// must be tested before their more general containers (McpZone, HidControl).
func classify(name, class string) groupKind {
	switch {
	case strings.Contains(class, "CutLane"):
		return kindCutLane
	case strings.Contains(class, "Exit"):
		return kindExit
	case strings.Contains(class, "HidEntry"):
		return kindHIDEntry
	case strings.Contains(class, "Entry"):
		return kindEntry
	case strings.Contains(class, "McpZoneControl"):
		return kindMCPZoneControl
	case strings.Contains(class, "McpZone"):
		return kindMCPZone
	case strings.Contains(class, "HidControl"):
		return kindHIDControl
	case strings.Contains(class, "NextAddr"):
		return kindNextAddr
	case strings.Contains(class, "Station"):
		return kindStation
	case strings.Contains(class, "address.Addr"):
		return kindAddress
	case strings.Contains(class, "label.Label") && strings.HasPrefix(name, "LabelHID"):
		return kindHIDLabel
	default:
		return kindUnknown
	}
}

// accCtx is one in-progress accumulation context — one entry per nested
// group currently open. Freed (dropped from the stack, eligible for GC) the
// moment its ElementEnd is processed.
type accCtx struct {
	kind   groupKind
	params map[string]string

	// Children accumulated since this context's ElementStart, flushed to
	// the parent (or to the Model, for top-level groups) at ElementEnd.
	edges    []layout.Edge
	stations []layout.Station
	cutLanes []layout.Lane
	entries  []layout.Lane
	exits    []layout.Lane
}

func newCtx(kind groupKind) *accCtx {
	return &accCtx{kind: kind, params: make(map[string]string, 16)}
}

// StreamingParser walks a TokenSource and incrementally builds a
// layout.Model. Memory use is bounded by the deepest group nesting (in
// practice: Address > NextAddr|Station, or McpZoneControl > McpZone >
// CutLane|Entry|Exit) times a small constant, never by total input size.
type StreamingParser struct {
	Progress      ProgressFunc
	progressEvery int // default 500

	addressesCommitted int
}

// NewStreamingParser returns a parser with default progress cadence.
func NewStreamingParser() *StreamingParser {
	return &StreamingParser{progressEvery: 500}
}

// Parse drains src, emitting a fully-populated layout.Model. A malformed or
// missing input stream (an error from src.Next() other than io.EOF) is
// fatal and returned to the caller; individual malformed numeric
// parameters are recovered locally with a default value.
func (p *StreamingParser) Parse(src TokenSource) (*layout.Model, error) {
	model := layout.NewModel()
	var stack []*accCtx

	emit := func(msg string) {
		if p.Progress == nil {
			return
		}
		// Percent is a rough estimate with no upper bound known in advance;
		// report committed-address count as the message carries the real
		// signal and percent is advisory only.
		p.Progress(msg, float64(p.addressesCommitted))
	}

	for {
		tok, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("layout parse: %w", err)
		}

		switch tok.Kind {
		case ElementStart:
			k := classify(tok.Name, tok.Class)
			stack = append(stack, newCtx(k))

		case Param:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			top.params[tok.Key] = tok.Value

		case ElementEnd:
			if len(stack) == 0 {
				continue
			}
			done := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			var parent *accCtx
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}

			if err := p.finalize(model, parent, done); err != nil {
				return nil, err
			}
			if done.kind == kindAddress && atoiDefault(done.params["address"], 0) > 0 {
				p.addressesCommitted++
				if p.addressesCommitted%p.progressEvery == 0 {
					emit(fmt.Sprintf("ingested %d addresses", p.addressesCommitted))
				}
			}
			// done is no longer referenced; it (and its scratch slices)
			// become eligible for GC here, preserving the bounded-memory
			// guarantee regardless of total input size.
		}
	}

	dropDanglingEdges(model)
	return model, nil
}

// dropDanglingEdges removes edges whose endpoints are not present in the
// committed address set, rather than failing the ingest. This can only run
// after the full stream is drained: a NextAddr's target address may appear
// later in document order than the address declaring it.
func dropDanglingEdges(model *layout.Model) {
	kept := model.Edges[:0]
	for _, e := range model.Edges {
		if model.Addresses[e.From] != nil && model.Addresses[e.To] != nil {
			kept = append(kept, e)
		}
	}
	model.Edges = kept
}

// finalize attaches a just-closed group's accumulated record to its
// parent context (or directly to the model, for top-level groups).
func (p *StreamingParser) finalize(model *layout.Model, parent *accCtx, done *accCtx) error {
	switch done.kind {

	case kindAddress:
		addrID := atoiDefault(done.params["address"], 0)
		if addrID <= 0 {
			return nil // spec: committed iff id positive
		}
		addr := &layout.Address{
			ID:          addrID,
			DrawX:       atofDefault(done.params["draw-x"], 0),
			DrawY:       atofDefault(done.params["draw-y"], 0),
			Symbol:      done.params["symbol-name"],
			IsStation:   atoiDefault(done.params["isstation"], 0) != 0,
			IsBranch:    atoiDefault(done.params["branch"], 0) != 0,
			IsJunction:  atoiDefault(done.params["junction"], 0) != 0,
			HIDIncluded: atoiDefault(done.params["hid-included"], -1),
			StopZone:    atoiDefault(done.params["stopzone"], 0),
		}
		if cx, ok := done.params["cad-x"]; ok {
			addr.HasCAD = true
			addr.CADX = atofDefault(cx, 0)
			addr.CADY = atofDefault(done.params["cad-y"], 0)
		}
		for _, st := range done.stations {
			st.AddressID = addrID
			st.X, st.Y = addr.DrawX, addr.DrawY
			addr.Stations = append(addr.Stations, st)
		}
		model.Addresses[addrID] = addr
		for _, e := range done.edges {
			e.From = addrID
			model.Edges = append(model.Edges, e)
		}
		return nil

	case kindNextAddr:
		if parent == nil || parent.kind != kindAddress {
			return nil
		}
		to := atoiDefault(done.params["next-address"], 0)
		if to <= 0 {
			return nil
		}
		parent.edges = append(parent.edges, layout.Edge{
			To:              to,
			Distance:        atofDefault(done.params["distance-puls"], 0),
			Speed:           atoiDefault(done.params["speed"], 0),
			Direction:       atoiDefault(done.params["direction"], 0),
			BranchDirection: atoiDefault(done.params["branch-direction"], 0),
		})
		return nil

	case kindStation:
		if parent == nil || parent.kind != kindAddress {
			return nil
		}
		parent.stations = append(parent.stations, layout.Station{
			PortID:   done.params["port-id"],
			Category: atoiDefault(done.params["category"], 0),
			Kind:     stationKindFromCode(atoiDefault(done.params["type"], 0)),
			Number:   atoiDefault(done.params["no"], 0),
			Position: atoiDefault(done.params["position"], 0),
		})
		return nil

	case kindCutLane, kindEntry, kindExit:
		if parent == nil || parent.kind != kindMCPZone {
			return nil
		}
		lane := layout.Lane{
			Start:     atoiDefault(done.params["start"], 0),
			End:       atoiDefault(done.params["end"], 0),
			StopNo:    atoiDefault(done.params["stop-no"], 0),
			StopZCU:   done.params["stop-zcu"],
			CountType: done.params["count-type"] == "true" || done.params["count-type"] == "1",
		}
		switch done.kind {
		case kindCutLane:
			parent.cutLanes = append(parent.cutLanes, lane)
		case kindEntry:
			parent.entries = append(parent.entries, lane)
		case kindExit:
			parent.exits = append(parent.exits, lane)
		}
		return nil

	case kindMCPZone:
		zone := &layout.MCPZone{
			ID:                atoiDefault(done.params["id"], 0),
			No:                atoiDefault(done.params["no"], 0),
			VehicleMax:        atoiDefault(done.params["vehicle-max"], 0),
			VehiclePrecaution: atoiDefault(done.params["vehicle-precaution"], 0),
			Type:              atoiDefault(done.params["type"], 0),
			CutLanes:          done.cutLanes,
			Entries:           done.entries,
			Exits:             done.exits,
		}
		model.Zones[zone.ID] = zone
		return nil

	case kindHIDEntry:
		model.HIDControls = append(model.HIDControls, layout.HIDControl{
			HIDID:     done.params["id"],
			MCPZoneNo: atoiDefault(done.params["mcpzone-no"], 0),
		})
		return nil

	case kindHIDLabel:
		model.HIDLabels = append(model.HIDLabels, layout.HIDLabel{
			MachineID: done.params["machine-id"],
			Address:   atoiDefault(done.params["address"], 0),
			DrawX:     atofDefault(done.params["draw-x"], 0),
			DrawY:     atofDefault(done.params["draw-y"], 0),
			Point:     atoiDefault(done.params["point"], 0),
		})
		return nil

	case kindHIDControl, kindMCPZoneControl, kindUnknown:
		return nil
	}
	return nil
}

func stationKindFromCode(code int) layout.StationKind {
	if code < int(layout.StationKindUnknown) || code > int(layout.StationKindMTLElevator) {
		return layout.StationKindUnknown
	}
	return layout.StationKind(code)
}

// atoiDefault parses s as an int, tolerating empty or non-numeric values by
// falling back to def.
func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// atofDefault is atoiDefault's float64 counterpart.
func atofDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}
