// Command oht drives the OHT Simulation Core standalone: it loads or
// synthesizes a layout, builds a SimulationEngine over it, and runs it in one
// of three modes ("demo", "console", "server"). Grounded on
// cmd/radar/radar.go's flag/subcommand/signal.NotifyContext shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/junryge/ASAS/internal/api"
	"github.com/junryge/ASAS/internal/config"
	"github.com/junryge/ASAS/internal/layout"
	"github.com/junryge/ASAS/internal/scheduler"
	"github.com/junryge/ASAS/internal/simcore"
	"github.com/junryge/ASAS/internal/storage/sqlite"
	"github.com/junryge/ASAS/internal/storage/wire"
)

var (
	modeFlag     = flag.String("mode", "console", "Run mode: demo, console, or server")
	listenFlag   = flag.String("listen", ":8090", "HTTP listen address (server mode only)")
	durationFlag = flag.Duration("duration", 30*time.Second, "Duration to run: wall-clock in console mode, simulated time in demo mode")
	vehiclesFlag = flag.Int("vehicles", 4, "Number of vehicles to seed")
	gridFlag     = flag.Int("grid", 6, "Grid size for the synthetic layout used when no -layout is given")
	layoutFlag   = flag.String("layout", "", "Path to a layout wire JSON export (any mode; empty uses the synthetic grid)")
	configFlag   = flag.String("config", "", "Path to a JSON simulation tuning config")
	dbPathFlag   = flag.String("db-path", "oht.db", "Path to the sqlite database file")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if flag.NArg() > 0 && flag.Arg(0) == "migrate" {
		runMigrateCommand(flag.Args()[1:], *dbPathFlag)
		return
	}

	cfg := config.Empty()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	model, err := loadOrBuildLayout(*layoutFlag, *gridFlag)
	if err != nil {
		log.Fatalf("failed to load layout: %v", err)
	}
	log.Printf("layout ready: %d addresses, %d edges, %d stations", len(model.Addresses), len(model.Edges), len(model.Stations))

	schedCfg := scheduler.Config{
		HotLotPriority:       simcore.JobPriority(cfg.GetHotLotPriority()),
		HotLotTimeoutSeconds: cfg.GetHotLotTimeoutSeconds(),
	}
	ca := scheduler.CollisionAvoidance{
		BumpDistance:     cfg.GetBumpDistance(),
		DispatchDistance: cfg.GetDispatchDistance(),
	}
	engine := simcore.NewEngine(model, simcore.DefaultEngineConfig(), schedCfg, ca)
	stationForVehicle := seedVehicles(engine, model, *vehiclesFlag)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *modeFlag {
	case "demo":
		runDemo(ctx, engine, *durationFlag, model, stationForVehicle)
	case "console":
		recorder := openRecorder(engine, model, *dbPathFlag)
		runConsole(ctx, engine, *durationFlag)
		if recorder != nil {
			recorder.Close()
		}
	case "server":
		recorder := openRecorder(engine, model, *dbPathFlag)
		runServer(ctx, engine)
		if recorder != nil {
			recorder.Close()
		}
	default:
		log.Fatalf("unknown mode %q: expected demo, console, or server", *modeFlag)
	}
}

// openRecorder opens the sqlite database at dbPath, migrates it, records a
// layout_session row for model, and registers a sqlite.Recorder observer on
// engine so console/server runs leave a queryable history of vehicle
// snapshots and completed jobs instead of state that only ever lives in
// memory. Failures are logged, not fatal: a missing or broken database
// shouldn't stop the simulation from running.
func openRecorder(engine *simcore.Engine, model *layout.Model, dbPath string) *sqlite.Recorder {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		log.Printf("session recording disabled: failed to open database: %v", err)
		return nil
	}
	migrations, err := sqlite.Migrations()
	if err != nil {
		log.Printf("session recording disabled: failed to load migrations: %v", err)
		return nil
	}
	if err := db.MigrateUp(migrations); err != nil {
		log.Printf("session recording disabled: migration failed: %v", err)
		return nil
	}
	sessionID, err := db.InsertLayoutSession(model, time.Now().UnixNano())
	if err != nil {
		log.Printf("session recording disabled: failed to insert layout session: %v", err)
		return nil
	}

	recorder := sqlite.NewRecorder(db, sessionID, engine, 10)
	engine.AddObserver(recorder)
	log.Printf("recording session %d to %s", sessionID, dbPath)
	return recorder
}

func loadOrBuildLayout(path string, grid int) (*layout.Model, error) {
	if path == "" {
		return buildDemoLayout(grid), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout file: %w", err)
	}
	defer f.Close()
	return wire.Decode(f)
}

// seedVehicles places n idle vehicles on the first n stations found in the
// layout, wrapping around if there are fewer stations than vehicles. It
// returns the seeded station Number (not address id) each vehicle was
// placed on, keyed by vehicle id, since jobs are addressed by station
// Number rather than by address id.
func seedVehicles(engine *simcore.Engine, model *layout.Model, n int) map[int]int {
	if len(model.Stations) == 0 {
		log.Printf("warning: layout has no stations, vehicles left unplaced")
		return nil
	}
	stationForVehicle := make(map[int]int, n)
	for i := 0; i < n; i++ {
		st := model.Stations[i%len(model.Stations)]
		vehicleID := i + 1
		stationForVehicle[vehicleID] = st.Number
		engine.AddVehicle(&simcore.Vehicle{
			ID:             vehicleID,
			CurrentAddress: st.AddressID,
			MaxSpeed:       6000,
			Battery:        100,
		})
	}
	return stationForVehicle
}

// nextStationNumber returns the station Number following src in numbers,
// wrapping around; numbers must be non-empty.
func nextStationNumber(numbers []int, src int) int {
	for i, n := range numbers {
		if n == src {
			return numbers[(i+1)%len(numbers)]
		}
	}
	return numbers[0]
}

// runDemo ticks the engine for a short, deterministic run and prints a
// summary, seeding one synthetic job per vehicle so the run has visible
// work. Jobs are addressed by station Number, matching
// LayoutStations.StationAddress, not by the vehicle's current address id.
func runDemo(ctx context.Context, engine *simcore.Engine, duration time.Duration, model *layout.Model, stationForVehicle map[int]int) {
	stationNumbers := make([]int, len(model.Stations))
	for i, st := range model.Stations {
		stationNumbers[i] = st.Number
	}

	jobID := 1
	for _, v := range engine.Vehicles() {
		src, ok := stationForVehicle[v.ID]
		if !ok || len(stationNumbers) == 0 {
			continue
		}
		dest := nextStationNumber(stationNumbers, src)
		engine.Scheduler().AddJob(&simcore.TransportJob{
			ID:            jobID,
			SourceStation: src,
			DestStation:   dest,
			Priority:      simcore.PriorityNormal,
			CarrierID:     uuid.NewString(),
		})
		jobID++
	}

	ticks := int(duration.Seconds() / simcore.DefaultEngineConfig().TickIntervalSeconds)
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			log.Println("demo interrupted")
			return
		default:
		}
		engine.Step()
	}

	stats := engine.Scheduler().Stats()
	log.Printf("demo complete: tick=%d pending=%d active=%d completed=%d avg_completion=%.2fs",
		engine.Tick(), stats.PendingJobs, stats.ActiveJobs, stats.CompletedJobs, stats.AvgCompletionTime)
}

// runConsole runs the engine headless for the given duration, printing a
// periodic progress line, honoring ctx cancellation for graceful shutdown.
func runConsole(ctx context.Context, engine *simcore.Engine, duration time.Duration) {
	deadline := time.Now().Add(duration)
	tickInterval := time.Duration(simcore.DefaultEngineConfig().TickIntervalSeconds * float64(time.Second))
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	progressEvery := int64(10 / simcore.DefaultEngineConfig().TickIntervalSeconds) // ~every 10 simulated seconds
	if progressEvery <= 0 {
		progressEvery = 1
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("console run interrupted")
			return
		case <-ticker.C:
			engine.Step()
			if engine.Tick()%progressEvery == 0 {
				stats := engine.Scheduler().Stats()
				log.Printf("t=%.1fs pending=%d active=%d completed=%d",
					engine.SimTimeSeconds(), stats.PendingJobs, stats.ActiveJobs, stats.CompletedJobs)
			}
			if time.Now().After(deadline) {
				log.Println("console run finished")
				return
			}
		}
	}
}

// runServer starts the HTTP state/job/stats surface and the engine's own
// background tick loop, both bound to ctx.
func runServer(ctx context.Context, engine *simcore.Engine) {
	engine.Run(ctx)
	defer engine.Stop()

	server := api.NewServer(engine)
	log.Printf("serving OHT simulation state on %s", *listenFlag)
	if err := server.Start(ctx, *listenFlag); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// runMigrateCommand handles "oht migrate up", the one migration operation
// this binary supports: the storage layer has a single linear schema.
func runMigrateCommand(args []string, dbPath string) {
	if len(args) < 1 || args[0] != "up" {
		fmt.Println("Usage: oht migrate up")
		os.Exit(1)
	}

	db, err := sqlite.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	migrations, err := sqlite.Migrations()
	if err != nil {
		log.Fatalf("failed to load migrations: %v", err)
	}
	if err := db.MigrateUp(migrations); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Println("migrations applied successfully")
}
