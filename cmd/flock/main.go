// Command flock runs the flocking simulation in a desktop window.
//
// Sliders in the side panel edit a draft configuration; pressing R
// restarts the simulation with the drafted values (engine configuration
// is fixed at construction). Pressing space pauses the simulation.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/telemetry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/ui"
)

const (
	panelWidth     = 220.0
	telemetryEvery = 10 // record statistics every N steps
)

type Game struct {
	engine   *flock.Flock
	log      *slog.Logger
	recorder *telemetry.Recorder
	seed     uint64
	step     int
	paused   bool

	panel       *ui.Panel
	separation  *ui.Slider
	alignment   *ui.Slider
	cohesion    *ui.Slider
	distance    *ui.Slider
	sepDistance *ui.Slider
	viewAngle   *ui.Slider
	predator    *ui.Checkbox
}

// draftConfig assembles a configuration from the current panel values.
func (g *Game) draftConfig() *flock.Config {
	cfg := g.engine.Config()
	cfg.Separation = g.separation.Value
	cfg.Alignment = g.alignment.Value
	cfg.Cohesion = g.cohesion.Value
	cfg.Distance = g.distance.Value
	cfg.SeparationDistance = g.sepDistance.Value
	cfg.ViewAngle = g.viewAngle.Value
	cfg.WithPredator = g.predator.Value
	return &cfg
}

func (g *Game) restart() {
	cfg := g.draftConfig()
	g.seed++
	engine, err := flock.New(cfg, rand.New(rand.NewPCG(g.seed, g.seed)))
	if err != nil {
		// Panel sliders cannot produce invalid values, but keep the old
		// engine if that ever changes.
		g.log.Error("restart failed", "error", err)
		return
	}
	g.engine = engine
	g.step = 0
	g.log.Info("simulation restarted",
		"seed", g.seed,
		"birds", cfg.NumBirds,
		"predator", cfg.WithPredator)
}

func (g *Game) Update() error {
	g.panel.Update()

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if g.paused {
		return nil
	}

	g.engine.Step()
	g.step++

	if g.step%telemetryEvery == 0 {
		if err := g.recorder.Record(g.step, g.engine.ComputeStatistics()); err != nil {
			g.log.Warn("telemetry write failed", "error", err)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})

	for _, b := range g.engine.Snapshot() {
		drawBird(screen, b, 6, birdImage)
	}
	if p, ok := g.engine.Predator(); ok {
		drawBird(screen, p, 10, predatorImage)
	}

	g.panel.Draw(screen)

	stats := g.engine.ComputeStatistics()
	msg := fmt.Sprintf("step %d  mean |v| %.2f  stdev (%.2f, %.2f)",
		g.step, stats.MeanVelocity.Len(), stats.StdevVelocity.X, stats.StdevVelocity.Y)
	if g.paused {
		msg += "  [paused]"
	}
	ebitenutil.DebugPrintAt(screen, msg, 10, int(g.engine.Config().CanvasHeight)-20)
}

// drawBird renders a bird as a triangle pointing along its velocity.
func drawBird(screen *ebiten.Image, b flock.Bird, size float64, src *ebiten.Image) {
	angle := math.Atan2(b.Vel.Y, b.Vel.X)

	tipX := b.Pos.X + math.Cos(angle)*size
	tipY := b.Pos.Y + math.Sin(angle)*size
	rightX := b.Pos.X + math.Cos(angle+2.5)*size*0.8
	rightY := b.Pos.Y + math.Sin(angle+2.5)*size*0.8
	leftX := b.Pos.X + math.Cos(angle-2.5)*size*0.8
	leftY := b.Pos.Y + math.Sin(angle-2.5)*size*0.8

	vertices := []ebiten.Vertex{
		{DstX: float32(tipX), DstY: float32(tipY), SrcX: 1, SrcY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: float32(rightX), DstY: float32(rightY), SrcX: 1, SrcY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: float32(leftX), DstY: float32(leftY), SrcX: 1, SrcY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	indices := []uint16{0, 1, 2}
	screen.DrawTriangles(vertices, indices, src, &ebiten.DrawTrianglesOptions{})
}

func (g *Game) Layout(w, h int) (int, int) {
	cfg := g.engine.Config()
	return int(cfg.CanvasWidth), int(cfg.CanvasHeight)
}

var (
	birdImage     = ebiten.NewImage(3, 3)
	predatorImage = ebiten.NewImage(3, 3)
)

func init() {
	birdImage.Fill(color.RGBA{R: 100, G: 200, B: 255, A: 255})
	predatorImage.Fill(color.RGBA{R: 255, G: 80, B: 60, A: 255})
}

func main() {
	configPath := flag.String("config", "", "path to a JSON configuration file")
	numBirds := flag.Int("n", 0, "population size (overrides config)")
	withPredator := flag.Bool("predator", false, "add a predator to the simulation")
	seed := flag.Uint64("seed", 0, "random seed (0 picks one at random)")
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

	panel := ui.NewPanel(cfg.CanvasWidth-panelWidth-10, 10, panelWidth, "Rules (R restarts)")
	g := &Game{
		engine:   engine,
		log:      log,
		recorder: recorder,
		seed:     *seed,
		panel:    panel,
	}
	g.separation = panel.AddSlider("separation", 0, 0.5, cfg.Separation)
	g.alignment = panel.AddSlider("alignment", 0, 0.5, cfg.Alignment)
	g.cohesion = panel.AddSlider("cohesion", 0, 0.005, cfg.Cohesion)
	g.distance = panel.AddSlider("view distance", 0, 200, cfg.Distance)
	g.sepDistance = panel.AddSlider("separation distance", 0, 100, cfg.SeparationDistance)
	g.viewAngle = panel.AddSlider("view angle", 0, math.Pi, cfg.ViewAngle)
	g.predator = panel.AddCheckbox("predator", cfg.WithPredator)

	log.Info("starting simulation",
		"birds", cfg.NumBirds,
		"predator", cfg.WithPredator,
		"seed", *seed,
		"canvas", fmt.Sprintf("%.0fx%.0f", cfg.CanvasWidth, cfg.CanvasHeight))

	ebiten.SetWindowSize(int(cfg.CanvasWidth), int(cfg.CanvasHeight))
	ebiten.SetWindowTitle("Flock")
	if err := ebiten.RunGame(g); err != nil {
		log.Error("game loop ended", "error", err)
		os.Exit(1)
	}
}
