package simcore

import "github.com/junryge/ASAS/internal/layout"

// LayoutStations adapts a layout.Model into the scheduler.StationLocator
// interface, indexing stations by their vendor port Number (the job-level
// "station id" referenced by TransportJob.SourceStation/DestStation).
type LayoutStations struct {
	byNumber map[int]layout.Station
}

// NewLayoutStations indexes model.Stations by Number. Later duplicates
// (same Number on more than one Address, which should not occur in a valid
// layout) overwrite earlier ones.
func NewLayoutStations(model *layout.Model) *LayoutStations {
	idx := make(map[int]layout.Station, len(model.Stations))
	for _, s := range model.Stations {
		idx[s.Number] = s
	}
	return &LayoutStations{byNumber: idx}
}

// StationAddress implements scheduler.StationLocator.
func (l *LayoutStations) StationAddress(stationID int) (addrID int, x, y float64, ok bool) {
	s, ok := l.byNumber[stationID]
	if !ok {
		return 0, 0, 0, false
	}
	return s.AddressID, s.X, s.Y, true
}
