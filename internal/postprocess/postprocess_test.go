package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junryge/ASAS/internal/layout"
)

func buildModel() *layout.Model {
	m := layout.NewModel()
	m.Addresses[1] = &layout.Address{ID: 1, DrawX: 0, DrawY: 0, Stations: []layout.Station{{PortID: "P-A"}}}
	m.Addresses[2] = &layout.Address{ID: 2, DrawX: 100, DrawY: 50}
	m.Addresses[3] = &layout.Address{ID: 3, DrawX: -20, DrawY: 200}

	m.Zones[10] = &layout.MCPZone{
		ID: 10, No: 500, VehicleMax: 3, VehiclePrecaution: 2,
		Entries: []layout.Lane{{Start: 1, End: 2, StopZCU: "ZCU-9"}},
		Exits:   []layout.Lane{{Start: 2, End: 3}},
	}
	m.HIDControls = []layout.HIDControl{
		{HIDID: "B01-1", MCPZoneNo: 500},
		{HIDID: "B01-2", MCPZoneNo: 999}, // no matching zone
	}
	m.HIDLabels = []layout.HIDLabel{
		{MachineID: "HID-B01-1(A)", Address: 7},
	}
	return m
}

func TestRun_Bounds(t *testing.T) {
	m := buildModel()
	Run(m)
	assert.Equal(t, -20.0, m.Bounds.MinX)
	assert.Equal(t, 100.0, m.Bounds.MaxX)
	assert.Equal(t, 0.0, m.Bounds.MinY)
	assert.Equal(t, 200.0, m.Bounds.MaxY)
}

func TestRun_BoundsEmptyModel(t *testing.T) {
	m := layout.NewModel()
	Run(m)
	assert.Equal(t, layout.Bounds{}, m.Bounds)
}

func TestRun_FlattenStations(t *testing.T) {
	m := buildModel()
	Run(m)
	require.Len(t, m.Stations, 1)
	assert.Equal(t, 1, m.Stations[0].AddressID)
	assert.Equal(t, 0.0, m.Stations[0].X)
}

func TestRun_ZoneAddressIndex(t *testing.T) {
	m := buildModel()
	Run(m)
	ids := m.ZoneAddrMap[10]
	assert.ElementsMatch(t, []int{1, 2, 3}, ids)
}

func TestRun_HIDMasterJoin(t *testing.T) {
	m := buildModel()
	Run(m)
	require.Len(t, m.HIDMaster, 2)

	matched := m.HIDMaster[0]
	assert.Equal(t, "B01-1", matched.HIDID)
	assert.Equal(t, "HID-B01-1(A)", matched.MachineID)
	assert.Equal(t, 7, matched.Address)
	assert.Equal(t, 3, matched.VehicleMax)
	assert.Equal(t, "1→2", matched.EntrySummary)
	assert.Equal(t, "2→3", matched.ExitSummary)
	assert.Equal(t, "ZCU-9", matched.FirstEntryZCU)

	unmatched := m.HIDMaster[1]
	assert.Equal(t, "B01-2", unmatched.HIDID)
	assert.Equal(t, "HID-B01-2", unmatched.MachineID)
	assert.Equal(t, 0, unmatched.VehicleMax)
}

func TestRun_HIDMasterSortedByZoneNo(t *testing.T) {
	m := layout.NewModel()
	m.HIDControls = []layout.HIDControl{
		{HIDID: "X", MCPZoneNo: 300},
		{HIDID: "A", MCPZoneNo: 100},
		{HIDID: "M", MCPZoneNo: 200},
	}
	Run(m)
	require.Len(t, m.HIDMaster, 3)
	assert.Equal(t, "A", m.HIDMaster[0].HIDID)
	assert.Equal(t, "M", m.HIDMaster[1].HIDID)
	assert.Equal(t, "X", m.HIDMaster[2].HIDID)
}
