// Package csv renders the six per-entity-family CSV master exports named in
// spec.md §6 plus the derived HID master join table, each UTF-8 with a
// leading BOM and a header row. Grounded on
// the plain encoding/csv usage the corpus favors for flat tabular exports;
// no third-party CSV library is wired here — encoding/csv already covers
// quoting/escaping and the corpus never reaches for an alternative for this
// kind of flat record dump.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/junryge/ASAS/internal/layout"
)

const utf8BOM = "﻿"

func newWriter(w io.Writer) (*csv.Writer, error) {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return nil, fmt.Errorf("write BOM: %w", err)
	}
	return csv.NewWriter(w), nil
}

func fabPrefix(fabName string) string {
	if fabName == "" {
		return "layout"
	}
	return fabName
}

// WriteNodeMaster writes "<fab>_Node_Master.csv": id, draw_x, draw_y,
// symbol, is_station, is_branch, is_junction, stop_zone.
func WriteNodeMaster(w io.Writer, model *layout.Model) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"id", "draw_x", "draw_y", "symbol", "is_station", "is_branch", "is_junction", "stop_zone"}); err != nil {
		return err
	}

	ids := make([]int, 0, len(model.Addresses))
	for id := range model.Addresses {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		a := model.Addresses[id]
		if err := cw.Write([]string{
			strconv.Itoa(a.ID), ftoa(a.DrawX), ftoa(a.DrawY), a.Symbol,
			strconv.FormatBool(a.IsStation), strconv.FormatBool(a.IsBranch), strconv.FormatBool(a.IsJunction),
			strconv.Itoa(a.StopZone),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgeMaster writes "<fab>_Edge_Master.csv": from, to, distance,
// speed, direction.
func WriteEdgeMaster(w io.Writer, model *layout.Model) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"from", "to", "distance", "speed", "direction"}); err != nil {
		return err
	}
	for _, e := range model.Edges {
		if err := cw.Write([]string{
			strconv.Itoa(e.From), strconv.Itoa(e.To), ftoa(e.Distance), strconv.Itoa(e.Speed), strconv.Itoa(e.Direction),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStationMaster writes "<fab>_Station_Master.csv": port_id, node_id,
// category, kind, number, position, x, y.
func WriteStationMaster(w io.Writer, model *layout.Model) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"port_id", "node_id", "category", "kind", "number", "position", "x", "y"}); err != nil {
		return err
	}
	for _, s := range model.Stations {
		if err := cw.Write([]string{
			s.PortID, strconv.Itoa(s.AddressID), strconv.Itoa(s.Category), strconv.Itoa(int(s.Kind)),
			strconv.Itoa(s.Number), strconv.Itoa(s.Position), ftoa(s.X), ftoa(s.Y),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMCPZoneMaster writes "<fab>_MCP_Zone_Master.csv": id, no, name,
// vehicle_max, vehicle_precaution, type, entry_count, exit_count,
// cut_lane_count.
func WriteMCPZoneMaster(w io.Writer, model *layout.Model) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"id", "no", "name", "vehicle_max", "vehicle_precaution", "type", "entry_count", "exit_count", "cut_lane_count"}); err != nil {
		return err
	}

	ids := make([]int, 0, len(model.Zones))
	for id := range model.Zones {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		z := model.Zones[id]
		if err := cw.Write([]string{
			strconv.Itoa(z.ID), strconv.Itoa(z.No), z.Name, strconv.Itoa(z.VehicleMax),
			strconv.Itoa(z.VehiclePrecaution), strconv.Itoa(z.Type),
			strconv.Itoa(len(z.Entries)), strconv.Itoa(len(z.Exits)), strconv.Itoa(len(z.CutLanes)),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHIDZoneMaster writes "<fab>_HID_Zone_Master.csv": name, machine_id,
// address, draw_x, draw_y, point.
func WriteHIDZoneMaster(w io.Writer, model *layout.Model) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"name", "machine_id", "address", "draw_x", "draw_y", "point"}); err != nil {
		return err
	}
	for _, h := range model.HIDLabels {
		if err := cw.Write([]string{h.Name, h.MachineID, strconv.Itoa(h.Address), ftoa(h.DrawX), ftoa(h.DrawY), strconv.Itoa(h.Point)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHIDMaster writes "<fab>_HID_Master.csv" (the derived join table):
// hid_id, machine_id, address, vehicle_max, vehicle_precaution, type,
// entry_count, exit_count, entry_summary, exit_summary, first_entry_zcu.
func WriteHIDMaster(w io.Writer, model *layout.Model) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{
		"hid_id", "machine_id", "address", "vehicle_max", "vehicle_precaution", "type",
		"entry_count", "exit_count", "entry_summary", "exit_summary", "first_entry_zcu",
	}); err != nil {
		return err
	}
	for _, h := range model.HIDMaster {
		if err := cw.Write([]string{
			h.HIDID, h.MachineID, strconv.Itoa(h.Address), strconv.Itoa(h.VehicleMax), strconv.Itoa(h.VehiclePrecaution),
			strconv.Itoa(h.Type), strconv.Itoa(h.EntryCount), strconv.Itoa(h.ExitCount), h.EntrySummary, h.ExitSummary, h.FirstEntryZCU,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteZoneAddressMap writes "<fab>_Zone_Address_Map.csv": zone_id,
// address_id (one row per membership, sorted for determinism).
func WriteZoneAddressMap(w io.Writer, model *layout.Model) error {
	cw, err := newWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Write([]string{"zone_id", "address_id"}); err != nil {
		return err
	}

	zoneIDs := make([]int, 0, len(model.ZoneAddrMap))
	for id := range model.ZoneAddrMap {
		zoneIDs = append(zoneIDs, id)
	}
	sort.Ints(zoneIDs)
	for _, zoneID := range zoneIDs {
		for _, addrID := range model.ZoneAddrMap[zoneID] {
			if err := cw.Write([]string{strconv.Itoa(zoneID), strconv.Itoa(addrID)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
