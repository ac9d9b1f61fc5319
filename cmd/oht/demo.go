package main

import (
	"fmt"

	"github.com/junryge/ASAS/internal/layout"
)

// buildDemoLayout synthesizes an n x n grid of addresses connected by
// bidirectional edges, with one station on every other grid node, for the
// "demo" driver mode when no real layout export is supplied.
func buildDemoLayout(n int) *layout.Model {
	if n < 2 {
		n = 2
	}
	m := layout.NewModel()
	m.FabName = "DEMO"

	const spacing = 1000.0
	id := func(row, col int) int { return row*n + col + 1 }

	stationNumber := 1
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			addrID := id(row, col)
			isStation := (row+col)%2 == 0
			m.Addresses[addrID] = &layout.Address{
				ID:        addrID,
				DrawX:     float64(col) * spacing,
				DrawY:     float64(row) * spacing,
				IsStation: isStation,
			}
			if isStation {
				m.Stations = append(m.Stations, layout.Station{
					PortID:    fmt.Sprintf("DEMO-%03d", stationNumber),
					Number:    stationNumber,
					AddressID: addrID,
					X:         float64(col) * spacing,
					Y:         float64(row) * spacing,
				})
				stationNumber++
			}
		}
	}

	addEdge := func(a, b int, dist float64) {
		m.Edges = append(m.Edges,
			layout.Edge{From: a, To: b, Distance: dist, Speed: 20},
			layout.Edge{From: b, To: a, Distance: dist, Speed: 20},
		)
	}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if col+1 < n {
				addEdge(id(row, col), id(row, col+1), spacing)
			}
			if row+1 < n {
				addEdge(id(row, col), id(row+1, col), spacing)
			}
		}
	}

	return m
}
