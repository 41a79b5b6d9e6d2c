package trail

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Ticker is implemented by schedulers that need a per-frame clock, such as
// TweenScheduler.
type Ticker interface {
	Update(dt float32)
}

// Game adapts a Controller to ebiten.Game. Each Update polls input (or
// replays injected moves), runs one frame of the trigger loop and advances the
// scheduler; Draw paints the pool back to front.
//
// For full control, skip Run and call Update/Draw from your own ebiten.Game.
type Game struct {
	// ClearColor fills the screen before sprites are drawn. The zero value
	// leaves the screen untouched.
	ClearColor Color

	// ScreenshotDir is where queued screenshots are written.
	ScreenshotDir string

	ctl      *Controller
	sched    Scheduler
	input    PointerSource
	render   renderer
	updateFn func() error

	injectQueue     []Vec2
	script          *ScriptRunner
	screenshotQueue []string

	fps   *fpsOverlay
	debug bool
}

// NewGame wires ctl to ebiten input. sched must be the scheduler the
// controller was built with; if it implements Ticker it is advanced every
// frame.
func NewGame(ctl *Controller, sched Scheduler) *Game {
	return &Game{
		ScreenshotDir: "screenshots",
		ctl:           ctl,
		sched:         sched,
		input:         &EbitenInput{},
	}
}

// Controller returns the controller driven by the game.
func (g *Game) Controller() *Controller { return g.ctl }

// SetInput replaces the hardware pointer source. nil disables real input;
// injected moves still work.
func (g *Game) SetInput(src PointerSource) { g.input = src }

// SetUpdateFunc registers a callback run at the start of every Update. A
// non-nil error ends the game.
func (g *Game) SetUpdateFunc(fn func() error) { g.updateFn = fn }

// SetShowFPS toggles the FPS/TPS overlay.
func (g *Game) SetShowFPS(show bool) {
	if show && g.fps == nil {
		g.fps = newFPSOverlay()
	}
	if !show {
		g.fps = nil
	}
}

// SetDebugMode enables per-frame draw stats and per-reveal logging.
func (g *Game) SetDebugMode(enabled bool) {
	g.debug = enabled
	g.ctl.SetDebugMode(enabled)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	return g.Step(float32(1.0 / float64(ebiten.TPS())))
}

// Step advances the game by one frame of dt seconds. It returns
// ebiten.Termination once the controller has stopped.
func (g *Game) Step(dt float32) error {
	if g.updateFn != nil {
		if err := g.updateFn(); err != nil {
			return err
		}
	}
	if g.script != nil {
		g.script.step(g)
	}

	if !g.processInjected() && g.input != nil {
		if x, y, ok := g.input.Poll(); ok {
			g.ctl.Pointer().Move(x, y)
		}
	}

	if !g.ctl.Update() {
		return ebiten.Termination
	}
	if t, ok := g.sched.(Ticker); ok {
		t.Update(dt)
	}
	if g.fps != nil {
		g.fps.update(float64(dt))
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.ClearColor != (Color{}) {
		screen.Fill(g.ClearColor.toRGBA())
	}

	var stats drawStats
	var t0 time.Time
	if g.debug {
		t0 = time.Now()
	}

	g.render.collect(g.ctl.Sprites())
	g.render.sort()

	if g.debug {
		stats.sortTime = time.Since(t0)
		t0 = time.Now()
	}

	g.render.draw(screen)

	if g.debug {
		stats.drawTime = time.Since(t0)
		stats.visible = len(g.render.order)
		stats.poolSize = g.ctl.PoolSize()
		if ts, ok := g.sched.(*TweenScheduler); ok {
			stats.timelines = ts.Running()
		}
		debugLogDraw(stats)
	}

	if g.fps != nil {
		g.fps.draw(screen)
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The trail works in window pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens a window and plays g until the window closes or the controller
// stops. A stopped controller is a normal exit, not an error.
func Run(g *Game, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Title == "" {
		cfg.Title = "Image Trail"
	}
	if cfg.ClearColor != (Color{}) {
		g.ClearColor = cfg.ClearColor
	}
	g.SetShowFPS(cfg.ShowFPS)

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)

	defer g.ctl.Close()
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
