package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junryge/ASAS/internal/layout"
)

func sampleModel() *layout.Model {
	m := layout.NewModel()
	m.FabName = "FAB1"
	m.Addresses[1] = &layout.Address{ID: 1, DrawX: 1, DrawY: 2, IsStation: true}
	m.Addresses[2] = &layout.Address{ID: 2, DrawX: 3, DrawY: 4}
	m.Edges = []layout.Edge{{From: 1, To: 2, Distance: 5, Speed: 10, Direction: 1}}
	m.Stations = []layout.Station{{PortID: "P1", Number: 7, AddressID: 1, X: 1, Y: 2}}
	m.Zones[1] = &layout.MCPZone{ID: 1, No: 1, Name: "Z1", Entries: []layout.Lane{{Start: 1, End: 2}}}
	m.ZoneAddrMap[1] = []int{1, 2}
	return m
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	m := sampleModel()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m))

	got, err := Decode(&buf)
	require.NoError(t, err)

	assert.Equal(t, m.FabName, got.FabName)
	assert.Equal(t, m.Totals(), got.Totals())
	if diff := cmp.Diff(m.Addresses[1], got.Addresses[1]); diff != "" {
		t.Errorf("address mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, got.Edges, 1)
	assert.Equal(t, 1, got.Edges[0].From)
	assert.Equal(t, 2, got.Edges[0].To)
	require.Len(t, got.Stations, 1)
	assert.Equal(t, 1, got.Stations[0].AddressID)
	assert.Equal(t, []int{1, 2}, got.ZoneAddrMap[1])
}

// The alternative start/end/node spelling must decode identically to
// from/to/node_id.
func TestDecode_AcceptsAlternativeKeySpelling(t *testing.T) {
	doc := `{
		"fab_name": "FAB1",
		"nodes": [{"id": 1}, {"id": 2}],
		"edges": [{"start": 1, "end": 2, "distance": 9}],
		"stations": [{"node": 1, "number": 5}]
	}`
	m, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, m.Edges, 1)
	assert.Equal(t, 1, m.Edges[0].From)
	assert.Equal(t, 2, m.Edges[0].To)
	require.Len(t, m.Stations, 1)
	assert.Equal(t, 1, m.Stations[0].AddressID)
}

func TestDecode_CanonicalKeySpelling(t *testing.T) {
	doc := `{
		"nodes": [{"id": 1}, {"id": 2}],
		"edges": [{"from": 1, "to": 2, "distance": 9}],
		"stations": [{"node_id": 2, "number": 5}]
	}`
	m, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Edges[0].From)
	assert.Equal(t, 2, m.Edges[0].To)
	assert.Equal(t, 2, m.Stations[0].AddressID)
}
