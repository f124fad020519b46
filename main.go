// rotation.report runs a mental/physical-rotation psychophysics session: it
// presents paired 3-D figures (rendering is delegated to the display
// collaborator), reads same/different responses and pointer drags from a
// response box, records per-trial results, and reports the Angular Disparity
// Effect at session end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/cogmotion/rotation.report/internal/api"
	"github.com/cogmotion/rotation.report/internal/db"
	"github.com/cogmotion/rotation.report/internal/input"
	"github.com/cogmotion/rotation.report/internal/report"
	"github.com/cogmotion/rotation.report/internal/stimulus"
	"github.com/cogmotion/rotation.report/internal/trial"
)

var (
	devMode      = flag.Bool("dev", false, "Replay input from the fixtures file instead of the response box")
	fixtures     = flag.String("fixtures", "fixtures.txt", "Input script for dev mode")
	inputDevice  = flag.String("input", envOr("INPUT_DEVICE", "/dev/ttyACM0"), "Response box serial device")
	baudRate     = flag.Int("baud", 0, "Response box baud rate (0 = default)")
	stimulusFile = flag.String("stimuli", envOr("STIMULUS_FILE", "stimuli_data.json"), "Stimulus collection file")
	dbFile       = flag.String("db", envOr("SESSION_DB", "sessions.db"), "Session database path")
	listen       = flag.String("listen", envOr("LISTEN_ADDR", ":8080"), "Listen address for the session API")
	nRotation    = flag.Int("rotation-trials", 10, "Number of trials with interactive rotation")
	nNoRotation  = flag.Int("fixed-trials", 10, "Number of trials without rotation")
	seed         = flag.Int64("seed", 0, "Trial shuffle seed (0 = time-based)")
	resultsFile  = flag.String("out", "experiment_results.json", "Session results file")
	chartFile    = flag.String("chart", "ade_chart.html", "ADE chart output (HTML; empty to skip)")
	plotFile     = flag.String("plot", "ade_plot.png", "ADE plot output (PNG; empty to skip)")
	xlsxFile     = flag.String("xlsx", "", "Spreadsheet export of trial results (empty to skip)")
)

var loadEnvOnce sync.Once

// envOr reads flag defaults from the environment so lab machines can pin
// their device paths without wrapper scripts. A .env file beside the binary
// is folded into the environment first.
func envOr(key, fallback string) string {
	loadEnvOnce.Do(func() { _ = godotenv.Load() })
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	flag.Parse()

	repo := stimulus.NewRepository(*stimulusFile)
	stimuli, err := repo.Load()
	if err != nil {
		log.Fatalf("failed to load stimuli: %v\nlabel stimuli with cmd/tools/label-stimuli before running a session", err)
	}
	log.Printf("loaded %d stimuli from %s", len(stimuli), *stimulusFile)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	sequencer := trial.NewSequencer(rand.New(rand.NewSource(rngSeed)))
	plan := sequencer.Plan(stimuli, *nRotation, *nNoRotation)
	if len(plan) == 0 {
		log.Fatal("no trials could be planned")
	}
	log.Printf("planned %d trials (%d with rotation)", len(plan), *nRotation)

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open session database: %v", err)
	}
	defer database.Close()

	var source input.Source
	if *devMode {
		data, err := os.ReadFile(*fixtures)
		if err != nil {
			log.Fatalf("failed to open fixtures file: %v", err)
		}
		source = input.NewScriptSource(data)
	} else {
		source, err = input.NewSerialSource(*inputDevice, *baudRate)
		if err != nil {
			log.Fatalf("failed to open response box at %s: %v", *inputDevice, err)
		}
	}
	defer source.Close()

	session := &db.Session{
		ID:           uuid.NewString(),
		StimulusFile: *stimulusFile,
		NRotation:    *nRotation,
		NNoRotation:  *nNoRotation,
		State:        "running",
		StartedAt:    time.Now(),
	}
	if err := database.CreateSession(session); err != nil {
		log.Fatalf("failed to record session: %v", err)
	}
	log.Printf("session %s started", session.ID)

	controller := trial.NewController(plan)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	sessionCtx, sessionDone := context.WithCancel(gctx)

	// read lines from the response box and translate them into events
	g.Go(func() error {
		if err := source.Monitor(sessionCtx); err != nil && err != context.Canceled {
			log.Printf("input source terminated: %v", err)
		}
		return nil
	})

	// drive the trial state machine until the session ends
	g.Go(func() error {
		defer sessionDone()
		return runSession(sessionCtx, controller, source.Events())
	})

	// session API alongside the run, for live inspection and past sessions
	g.Go(func() error {
		mux := http.NewServeMux()
		database.AttachAdminRoutes(mux)
		mux.Handle("/api/", http.StripPrefix("/api", api.NewServer(database).ServeMux()))

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("failed to start server: %v", err)
			}
		}()

		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// End the whole group once the session finishes: cancelling the parent
	// signal context tears down the monitor and HTTP goroutines.
	go func() {
		<-sessionCtx.Done()
		stop()
	}()

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Printf("session run error: %v", err)
	}

	finalize(database, session, controller)
}

// finalize persists the session's results and emits the report artifacts.
// Aborted sessions keep everything recorded so far.
func finalize(database *db.DB, session *db.Session, controller *trial.Controller) {
	results := controller.Results()
	state := controller.State().String()

	if data, err := controller.Log().Serialize(); err != nil {
		log.Printf("failed to serialize results: %v", err)
	} else if err := os.WriteFile(*resultsFile, data, 0644); err != nil {
		log.Printf("failed to write results file: %v", err)
	} else {
		log.Printf("results saved to %s", *resultsFile)
	}

	if err := database.RecordResults(session.ID, results); err != nil {
		log.Printf("failed to persist results: %v", err)
	}
	if err := database.FinishSession(session.ID, state, time.Now()); err != nil {
		log.Printf("failed to finish session: %v", err)
	}

	printSummary(results)

	if *chartFile != "" && len(results) > 0 {
		f, err := os.Create(*chartFile)
		if err != nil {
			log.Printf("failed to create chart file: %v", err)
		} else {
			title := fmt.Sprintf("ADE: angle vs response time (session %s)", session.ID)
			if err := report.ADEChart(f, title, results); err != nil {
				log.Printf("failed to render chart: %v", err)
			}
			f.Close()
		}
	}
	if *plotFile != "" && len(results) > 0 {
		if err := report.SaveADEPlot(*plotFile, "ADE: angle vs response time", results); err != nil {
			log.Printf("failed to save plot: %v", err)
		}
	}
	if *xlsxFile != "" && len(results) > 0 {
		if err := report.ExportXLSX(*xlsxFile, results); err != nil {
			log.Printf("failed to export spreadsheet: %v", err)
		}
	}
}
