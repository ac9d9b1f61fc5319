package sqlite

import (
	"database/sql"

	"github.com/junryge/ASAS/internal/layout"
	"github.com/junryge/ASAS/internal/simcore"
)

// InsertLayoutSession records one ingested layout's summary counters and
// returns the new session id. A round trip through storage must preserve
// the Totals counters.
func (db *DB) InsertLayoutSession(model *layout.Model, ingestedAtUnixNanos int64) (int64, error) {
	totals := model.Totals()
	res, err := db.Exec(`
		INSERT INTO layout_session
			(fab_name, total_nodes, total_edges, total_stations, total_mcp_zones, total_hid_zones, ingested_at_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		model.FabName, totals.TotalNodes, totals.TotalEdges, totals.TotalStations, totals.TotalMCPZones, totals.TotalHIDZones, ingestedAtUnixNanos)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// LayoutSessionTotals is the round-tripped subset of layout.Totals read
// back from storage.
type LayoutSessionTotals struct {
	FabName string
	layout.Totals
}

// GetLayoutSession reads back a session's summary counters.
func (db *DB) GetLayoutSession(sessionID int64) (*LayoutSessionTotals, error) {
	row := db.QueryRow(`
		SELECT fab_name, total_nodes, total_edges, total_stations, total_mcp_zones, total_hid_zones
		FROM layout_session WHERE session_id = ?`, sessionID)
	var out LayoutSessionTotals
	if err := row.Scan(&out.FabName, &out.TotalNodes, &out.TotalEdges, &out.TotalStations, &out.TotalMCPZones, &out.TotalHIDZones); err != nil {
		return nil, err
	}
	return &out, nil
}

// InsertJob persists a TransportJob's current state.
func (db *DB) InsertJob(sessionID int64, job *simcore.TransportJob) error {
	_, err := db.Exec(`
		INSERT INTO transport_job
			(job_id, session_id, source_station, dest_station, priority, status, assigned_vehicle, carrier_id, is_hotlot, created_at_unix_nanos, started_at_unix_nanos, completed_at_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			assigned_vehicle = excluded.assigned_vehicle,
			started_at_unix_nanos = excluded.started_at_unix_nanos,
			completed_at_unix_nanos = excluded.completed_at_unix_nanos`,
		job.ID, sessionID, job.SourceStation, job.DestStation, int(job.Priority), job.Status.String(),
		nullableInt(job.AssignedVehicle), nullableString(job.CarrierID), job.IsHotLot,
		job.CreatedAt, nullableInt64(job.StartedAt), nullableInt64(job.CompletedAt))
	return err
}

// CountJobsByStatus returns the number of jobs in a session with the given
// status string, used by tests.
func (db *DB) CountJobsByStatus(sessionID int64, status string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM transport_job WHERE session_id = ? AND status = ?`, sessionID, status).Scan(&n)
	return n, err
}

// InsertVehicleSnapshot records one vehicle's state at a given tick.
func (db *DB) InsertVehicleSnapshot(sessionID int64, tick int64, v *simcore.Vehicle) error {
	_, err := db.Exec(`
		INSERT INTO vehicle_snapshot
			(session_id, tick, vehicle_id, state, x, y, current_address, has_foup, current_job)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, tick, v.ID, v.State.String(), v.X, v.Y, v.CurrentAddress, v.HasFOUP, nullableInt(v.CurrentJob))
	return err
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullableInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
