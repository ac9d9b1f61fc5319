package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junryge/ASAS/internal/layout"
	"github.com/junryge/ASAS/internal/scheduler"
	"github.com/junryge/ASAS/internal/simcore"
)

func testEngine() *simcore.Engine {
	m := layout.NewModel()
	m.Addresses[1] = &layout.Address{ID: 1, DrawX: 0, DrawY: 0}
	m.Addresses[2] = &layout.Address{ID: 2, DrawX: 100, DrawY: 0}
	m.Edges = []layout.Edge{{From: 1, To: 2, Distance: 100}, {From: 2, To: 1, Distance: 100}}
	m.Stations = []layout.Station{
		{Number: 10, PortID: "PORT-10", AddressID: 1, X: 0, Y: 0},
		{Number: 20, PortID: "PORT-20", AddressID: 2, X: 100, Y: 0},
	}
	e := simcore.NewEngine(m, simcore.DefaultEngineConfig(), scheduler.DefaultConfig(), scheduler.DefaultCollisionAvoidance())
	e.AddVehicle(&simcore.Vehicle{ID: 1, Name: "OHT-1", CurrentAddress: 1, MaxSpeed: 6000})
	return e
}

func TestHandleState_ReturnsVehicleSnapshot(t *testing.T) {
	s := NewServer(testEngine())
	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()

	s.ServeMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Vehicles, 1)
	assert.Equal(t, 1, resp.Vehicles[0].ID)
	assert.Equal(t, "OHT-1", resp.Vehicles[0].Name)
	assert.Equal(t, "idle", resp.Vehicles[0].State)

	require.Len(t, resp.Stations, 2)
	assert.Equal(t, 10, resp.Stations[0].ID)
	assert.Equal(t, "PORT-10", resp.Stations[0].Name)
	assert.True(t, resp.Stations[0].IsAvailable)
	assert.Equal(t, jobCountsView{}, resp.JobCounts)
}

func TestHandleState_RejectsNonGet(t *testing.T) {
	s := NewServer(testEngine())
	req := httptest.NewRequest(http.MethodPost, "/state", nil)
	rec := httptest.NewRecorder()

	s.ServeMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleJobs_SubmitsToScheduler(t *testing.T) {
	e := testEngine()
	s := NewServer(e)

	body, err := json.Marshal(jobRequest{ID: 1, SourceStation: 10, DestStation: 20, Priority: 1})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, e.Scheduler().PendingJobs(), 1)
}

func TestHandleJobs_RejectsInvalidJSON(t *testing.T) {
	s := NewServer(testEngine())
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	s.ServeMux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleState_ReflectsJobCounts(t *testing.T) {
	e := testEngine()
	e.Scheduler().AddJob(&simcore.TransportJob{ID: 1, SourceStation: 10, DestStation: 20})
	s := NewServer(e)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()

	s.ServeMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.JobCounts.Pending)
}

func TestHandleStats_ReflectsPendingCount(t *testing.T) {
	e := testEngine()
	e.Scheduler().AddJob(&simcore.TransportJob{ID: 1, SourceStation: 10, DestStation: 20})
	s := NewServer(e)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	s.ServeMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats scheduler.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.PendingJobs)
}
