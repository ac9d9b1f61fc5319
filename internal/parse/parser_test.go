package parse

import (
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceTokenSource feeds a fixed token slice, used to drive the parser
// without needing XML fixtures for most tests.
type sliceTokenSource struct {
	toks []Token
	i    int
}

func (s *sliceTokenSource) Next() (Token, error) {
	if s.i >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func start(name, class string) Token { return Token{Kind: ElementStart, Name: name, Class: class} }
func end() Token                     { return Token{Kind: ElementEnd} }
func param(k, v string) Token        { return Token{Kind: Param, Key: k, Value: v} }

func addressTokens(id int, x, y float64, nextAddrs []int) []Token {
	toks := []Token{
		start("Addr_"+strconv.Itoa(id), "kr.co.vendor.layout.address.Addr"),
		param("address", strconv.Itoa(id)),
		param("draw-x", strconv.FormatFloat(x, 'f', -1, 64)),
		param("draw-y", strconv.FormatFloat(y, 'f', -1, 64)),
	}
	for _, n := range nextAddrs {
		toks = append(toks,
			start("NextAddr", "kr.co.vendor.layout.address.NextAddr"),
			param("next-address", strconv.Itoa(n)),
			param("distance-puls", "100"),
			end(),
		)
	}
	toks = append(toks, end())
	return toks
}

func TestParser_BasicGrid(t *testing.T) {
	var toks []Token
	toks = append(toks, addressTokens(1, 0, 0, []int{2, 3})...)
	toks = append(toks, addressTokens(2, 500, 0, []int{4})...)
	toks = append(toks, addressTokens(3, 0, 400, []int{4})...)
	toks = append(toks, addressTokens(4, 500, 400, nil)...)

	p := NewStreamingParser()
	model, err := p.Parse(&sliceTokenSource{toks: toks})
	require.NoError(t, err)

	require.Len(t, model.Addresses, 4)
	assert.Len(t, model.Edges, 4)
	for _, e := range model.Edges {
		assert.NotNil(t, model.Addresses[e.From])
		assert.NotNil(t, model.Addresses[e.To])
	}
}

func TestParser_DanglingEdgeDropped(t *testing.T) {
	toks := addressTokens(1, 0, 0, []int{999}) // 999 never declared
	p := NewStreamingParser()
	model, err := p.Parse(&sliceTokenSource{toks: toks})
	require.NoError(t, err)
	assert.Len(t, model.Addresses, 1)
	assert.Empty(t, model.Edges)
}

func TestParser_ZeroAddressIDNotCommitted(t *testing.T) {
	toks := addressTokens(0, 1, 1, nil)
	p := NewStreamingParser()
	model, err := p.Parse(&sliceTokenSource{toks: toks})
	require.NoError(t, err)
	assert.Empty(t, model.Addresses)
}

func TestParser_MalformedNumericFallsBackToDefault(t *testing.T) {
	toks := []Token{
		start("Addr_1", "address.Addr"),
		param("address", "1"),
		param("draw-x", "not-a-number"),
		param("hid-included", ""),
		end(),
	}
	p := NewStreamingParser()
	model, err := p.Parse(&sliceTokenSource{toks: toks})
	require.NoError(t, err)
	addr := model.Addresses[1]
	require.NotNil(t, addr)
	assert.Equal(t, 0.0, addr.DrawX)
	assert.Equal(t, -1, addr.HIDIncluded)
}

func TestParser_StationAttachedToAddress(t *testing.T) {
	toks := []Token{
		start("Addr_1", "address.Addr"),
		param("address", "1"),
		param("draw-x", "10"),
		param("draw-y", "20"),
		start("Station1", "station.Station"),
		param("port-id", "P-001"),
		param("category", "1"),
		param("type", "0"),
		end(), // station
		end(), // address
	}
	p := NewStreamingParser()
	model, err := p.Parse(&sliceTokenSource{toks: toks})
	require.NoError(t, err)

	addr := model.Addresses[1]
	require.Len(t, addr.Stations, 1)
	assert.Equal(t, "P-001", addr.Stations[0].PortID)
	assert.Equal(t, addr.DrawX, addr.Stations[0].X)
	assert.Equal(t, addr.DrawY, addr.Stations[0].Y)
}

func TestParser_McpZoneVsLaneDisambiguation(t *testing.T) {
	toks := []Token{
		start("ZoneControl", "kr.co.vendor.mcpzone.McpZoneControl"),
		start("Zone1", "kr.co.vendor.mcpzone.McpZone"),
		param("id", "1"),
		param("no", "100"),
		param("vehicle-max", "3"),
		start("CutLane1", "kr.co.vendor.mcpzone.CutLane"),
		param("start", "1"),
		param("end", "2"),
		end(),
		start("Entry1", "kr.co.vendor.mcpzone.Entry"),
		param("start", "1"),
		param("end", "2"),
		param("stop-zcu", "ZCU-1"),
		end(),
		start("Exit1", "kr.co.vendor.mcpzone.Exit"),
		param("start", "2"),
		param("end", "1"),
		end(),
		end(), // McpZone
		end(), // McpZoneControl
	}
	p := NewStreamingParser()
	model, err := p.Parse(&sliceTokenSource{toks: toks})
	require.NoError(t, err)

	zone := model.Zones[1]
	require.NotNil(t, zone)
	assert.Equal(t, 100, zone.No)
	assert.Len(t, zone.CutLanes, 1)
	assert.Len(t, zone.Entries, 1)
	assert.Len(t, zone.Exits, 1)
	assert.Equal(t, "ZCU-1", zone.Entries[0].StopZCU)
}

func TestParser_HIDControlAndLabel(t *testing.T) {
	toks := []Token{
		start("HidControl", "kr.co.vendor.hid.HidControl"),
		start("Entry1", "kr.co.vendor.hid.HidEntry"),
		param("id", "B01-1"),
		param("mcpzone-no", "100"),
		end(),
		end(),
		start("LabelHID_1", "kr.co.vendor.label.Label"),
		param("machine-id", "HID-B01-1(A)"),
		param("address", "5"),
		end(),
	}
	p := NewStreamingParser()
	model, err := p.Parse(&sliceTokenSource{toks: toks})
	require.NoError(t, err)

	require.Len(t, model.HIDControls, 1)
	assert.Equal(t, "B01-1", model.HIDControls[0].HIDID)
	assert.Equal(t, 100, model.HIDControls[0].MCPZoneNo)

	require.Len(t, model.HIDLabels, 1)
	assert.Equal(t, "HID-B01-1(A)", model.HIDLabels[0].MachineID)
}

func TestParser_ProgressCallback(t *testing.T) {
	var toks []Token
	for i := 1; i <= 1001; i++ {
		toks = append(toks, addressTokens(i, float64(i), 0, nil)...)
	}
	var calls int
	p := NewStreamingParser()
	p.Progress = func(msg string, pct float64) { calls++ }
	_, err := p.Parse(&sliceTokenSource{toks: toks})
	require.NoError(t, err)
	assert.Equal(t, 2, calls) // at 500 and 1000
}
