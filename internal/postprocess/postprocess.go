// Package postprocess enriches a layout.Model after the StreamingParser
// completes: bounds, a flat station table, a zone→address index, and the
// HID master join. Grounded on the vendor's hid_zone_mapping.py join logic.
package postprocess

import (
	"fmt"
	"sort"
	"strings"

	"github.com/junryge/ASAS/internal/layout"
)

// Run enriches model in place. It is idempotent: calling it twice recomputes
// the same derived fields from the same raw inputs.
func Run(model *layout.Model) {
	computeBounds(model)
	flattenStations(model)
	buildZoneAddressIndex(model)
	buildHIDMaster(model)
}

// computeBounds recomputes model.Bounds; it is all zero when no addresses
// were committed.
func computeBounds(model *layout.Model) {
	if len(model.Addresses) == 0 {
		model.Bounds = layout.Bounds{}
		return
	}
	first := true
	var b layout.Bounds
	for _, a := range model.Addresses {
		if first {
			b = layout.Bounds{MinX: a.DrawX, MaxX: a.DrawX, MinY: a.DrawY, MaxY: a.DrawY}
			first = false
			continue
		}
		if a.DrawX < b.MinX {
			b.MinX = a.DrawX
		}
		if a.DrawX > b.MaxX {
			b.MaxX = a.DrawX
		}
		if a.DrawY < b.MinY {
			b.MinY = a.DrawY
		}
		if a.DrawY > b.MaxY {
			b.MaxY = a.DrawY
		}
	}
	model.Bounds = b
}

// flattenStations flattens each address's embedded station list into a
// top-level list, each carrying its parent address id and cached (x, y).
func flattenStations(model *layout.Model) {
	model.Stations = model.Stations[:0]
	// Deterministic order: by address id, then by station order within it.
	ids := make([]int, 0, len(model.Addresses))
	for id := range model.Addresses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		addr := model.Addresses[id]
		for _, st := range addr.Stations {
			st.AddressID = id
			st.X, st.Y = addr.DrawX, addr.DrawY
			model.Stations = append(model.Stations, st)
		}
	}
}

// buildZoneAddressIndex computes, for each MCPZone, the
// union of addresses referenced by any lane (entries ∪ exits ∪ cut-lanes,
// combining start and end). Dangling addresses (not yet committed at
// parse-time, per the layout's XML ordering) are kept as raw numbers — the
// index is not filtered against the known address set.
func buildZoneAddressIndex(model *layout.Model) {
	model.ZoneAddrMap = make(map[int][]int, len(model.Zones))
	for zoneID, zone := range model.Zones {
		seen := make(map[int]struct{})
		var ordered []int
		add := func(id int) {
			if id == 0 {
				return
			}
			if _, ok := seen[id]; ok {
				return
			}
			seen[id] = struct{}{}
			ordered = append(ordered, id)
		}
		for _, lanes := range [][]layout.Lane{zone.Entries, zone.Exits, zone.CutLanes} {
			for _, l := range lanes {
				add(l.Start)
				add(l.End)
			}
		}
		model.ZoneAddrMap[zoneID] = ordered
	}
}

// shortHIDID extracts the short HID id from a label's machine id string:
// strip the "HID-" prefix and drop any trailing parenthesized suffix, e.g.
// "HID-B01-1(A)" -> "B01-1".
func shortHIDID(machineID string) string {
	s := strings.TrimPrefix(machineID, "HID-")
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	return s
}

// buildHIDMaster joins, for each HidEntry (sorted by mcpzone-no ascending),
// the associated zone and label into one HIDMaster row.
func buildHIDMaster(model *layout.Model) {
	zonesByNo := make(map[int]*layout.MCPZone, len(model.Zones))
	for _, z := range model.Zones {
		zonesByNo[z.No] = z
	}
	labelsByHIDID := make(map[string]layout.HIDLabel, len(model.HIDLabels))
	for _, l := range model.HIDLabels {
		labelsByHIDID[shortHIDID(l.MachineID)] = l
	}

	entries := make([]layout.HIDControl, len(model.HIDControls))
	copy(entries, model.HIDControls)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MCPZoneNo < entries[j].MCPZoneNo
	})

	rows := make([]layout.HIDMaster, 0, len(entries))
	for _, entry := range entries {
		row := layout.HIDMaster{HIDID: entry.HIDID}

		if label, ok := labelsByHIDID[entry.HIDID]; ok {
			row.MachineID = label.MachineID
			row.Address = label.Address
		} else {
			row.MachineID = fmt.Sprintf("HID-%s", entry.HIDID)
		}

		if zone, ok := zonesByNo[entry.MCPZoneNo]; ok {
			row.VehicleMax = zone.VehicleMax
			row.VehiclePrecaution = zone.VehiclePrecaution
			row.Type = zone.Type
			row.EntryCount = len(zone.Entries)
			row.ExitCount = len(zone.Exits)
			row.EntrySummary = summarizeLanes(zone.Entries)
			row.ExitSummary = summarizeLanes(zone.Exits)
			row.FirstEntryZCU = firstNonEmptyZCU(zone.Entries)
		}

		rows = append(rows, row)
	}
	model.HIDMaster = rows
}

// summarizeLanes renders a human-readable "start→end; start→end; ..."
// summary of a zone's lanes.
func summarizeLanes(lanes []layout.Lane) string {
	parts := make([]string, 0, len(lanes))
	for _, l := range lanes {
		parts = append(parts, fmt.Sprintf("%d→%d", l.Start, l.End))
	}
	return strings.Join(parts, "; ")
}

func firstNonEmptyZCU(lanes []layout.Lane) string {
	for _, l := range lanes {
		if l.StopZCU != "" {
			return l.StopZCU
		}
	}
	return ""
}
