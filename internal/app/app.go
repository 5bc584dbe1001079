//go:build ebiten

package app

import (
	"errors"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"heat2d/internal/analytic"
	"heat2d/internal/core"
	"heat2d/internal/render"
	"heat2d/internal/sim"
	"heat2d/internal/ui"
	"heat2d/internal/validate"
)

// Game adapts a sim.Driver to the ebiten.Game interface.
type Game struct {
	cfg    *Config
	logger *log.Logger

	driver  *sim.Driver
	painter *render.FieldPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	timer   *core.FixedStep
	errBuf  *core.Buffer
	f       analytic.Func

	paused   bool
	tickOnce bool
	result   *sim.Result
	runErr   error
}

// New constructs a Game and initialises its driver.
func New(cfg *Config, logger *log.Logger) (*Game, error) {
	g := &Game{cfg: cfg, logger: logger, timer: core.NewFixedStep(cfg.SPS)}
	if err := g.Reset(); err != nil {
		return nil, err
	}
	g.hud = ui.NewHUD(g, "heat2d", cfg.HUDWidth)
	return g, nil
}

// Reset rebuilds the driver from the configuration.
func (g *Game) Reset() error {
	d, err := sim.New(g.cfg.Sim, sim.WithLogger(g.logger))
	if err != nil {
		return err
	}
	if err := d.Init(); err != nil {
		return err
	}
	f, _ := analytic.ByName(g.cfg.Sim.Analytic)
	extent := d.Grid().Extent()
	g.driver = d
	g.f = f
	g.painter = render.NewFieldPainter(extent)
	g.overlay = ui.NewOverlay(extent, g.cfg.Scale)
	g.errBuf = core.NewBuffer(extent, 1)
	g.result = nil
	g.runErr = nil
	g.tickOnce = false
	return nil
}

// Parameters forwards the driver's parameter snapshot to the HUD.
func (g *Game) Parameters() core.ParameterSnapshot { return g.driver.Parameters() }

// Status lists the live run state for the HUD.
func (g *Game) Status() []string {
	lines := []string{
		fmt.Sprintf("step %d / %d", g.driver.StepIndex(), g.cfg.Sim.TimeSteps),
		fmt.Sprintf("t = %.5f", g.driver.SimulatedTime()),
		"state: " + g.driver.State().String(),
	}
	if g.paused {
		lines = append(lines, "paused")
	}
	if g.result != nil {
		verdict := "FAILED"
		if g.result.Passed {
			verdict = "passed"
		}
		lines = append(lines, fmt.Sprintf("validation %s, max error %.3g", verdict, g.result.MaxError))
	}
	if g.runErr != nil {
		lines = append(lines, "error: "+g.runErr.Error())
	}
	return lines
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.Reset(); err != nil {
			return err
		}
	}
	g.overlay.Update()

	n := 0
	if !g.paused {
		n = g.timer.Due(g.cfg.MaxBurst)
	} else if g.tickOnce {
		n = 1
	}
	g.tickOnce = false
	for i := 0; i < n && g.result == nil && g.runErr == nil; i++ {
		g.advance()
	}
	g.hud.Update()
	return nil
}

func (g *Game) advance() {
	err := g.driver.Step()
	if errors.Is(err, sim.ErrComplete) {
		res, ferr := g.driver.Finalize()
		if ferr != nil {
			g.runErr = ferr
			return
		}
		g.result = &res
		return
	}
	if err != nil {
		g.runErr = err
	}
}

// Draw renders the current field, the error overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	v := g.driver.Current()
	rng := render.DefaultRange
	if g.cfg.AutoRange {
		rng = render.AutoRange(v)
	}
	g.painter.Blit(screen, v, rng, g.cfg.Scale)
	if g.overlay.Visible() {
		validate.ErrorField(g.errBuf, v, g.driver.Grid(), g.f, g.driver.SimulatedTime())
		g.overlay.Draw(screen, core.ReadOnly(g.errBuf))
	}
	w, h := g.fieldSize()
	g.hud.Draw(screen, w, max(h, g.hud.Height()))
}

func (g *Game) fieldSize() (int, int) {
	ext := g.driver.Grid().Extent()
	return ext[1] * g.cfg.Scale, ext[0] * g.cfg.Scale
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.fieldSize()
	return w + g.hud.Width(), max(h, g.hud.Height())
}
