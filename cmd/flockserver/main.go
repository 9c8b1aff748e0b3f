// Command flockserver runs the simulation headless and streams state to
// browsers over a websocket. The embedded page at / renders the flock on
// a canvas.
package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/stream"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/telemetry"
)

//go:embed web
var webFS embed.FS

const telemetryEvery = 10

// run drives the simulation loop until the context is cancelled,
// broadcasting a snapshot to the hub after every step.
func run(ctx context.Context, f *flock.Flock, hub *stream.Hub, rec *telemetry.Recorder, tps int, log *slog.Logger) {
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Step()
			step++
			hub.Broadcast(stream.NewSnapshot(step, f))
			if step%telemetryEvery == 0 {
				if err := rec.Record(step, f.ComputeStatistics()); err != nil {
					log.Warn("telemetry write failed", "error", err)
				}
			}
		}
	}
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", "", "path to a JSON configuration file")
	numBirds := flag.Int("n", 0, "population size (overrides config)")
	withPredator := flag.Bool("predator", false, "add a predator to the simulation")
	seed := flag.Uint64("seed", 0, "random seed (0 picks one at random)")
	tps := flag.Int("tps", 30, "simulation ticks per second")
	outDir := flag.String("out", "", "directory for CSV telemetry (empty disables)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := flock.DefaultConfig()
	if *configPath != "" {
		loaded, err := flock.LoadConfig(*configPath)
		if err != nil {
			log.Error("loading configuration", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *numBirds > 0 {
		cfg.NumBirds = *numBirds
	}
	if *withPredator {
		cfg.WithPredator = true
	}
	if *seed == 0 {
		*seed = rand.Uint64()
	}
	if *tps <= 0 {
		log.Error("tps must be positive", "tps", *tps)
		os.Exit(1)
	}

	engine, err := flock.New(cfg, rand.New(rand.NewPCG(*seed, *seed)))
	if err != nil {
		log.Error("building engine", "error", err)
		os.Exit(1)
	}

	recorder, err := telemetry.NewRecorder(*outDir)
	if err != nil {
		log.Error("opening telemetry output", "dir", *outDir, "error", err)
		os.Exit(1)
	}
	defer recorder.Close()

	hub := stream.NewHub(log)
	defer hub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go run(ctx, engine, hub, recorder, *tps, log)

	static, err := fs.Sub(webFS, "web")
	if err != nil {
		log.Error("embedded assets", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/", http.FileServerFS(static))

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("server started",
		"addr", fmt.Sprintf("http://localhost%s", *addr),
		"birds", cfg.NumBirds,
		"predator", cfg.WithPredator,
		"seed", *seed,
		"tps", *tps)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http serve error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
