// Package game owns one arena session: the tick history, the spatial index
// mirroring the newest tick, the display controller and the static map. All
// entry points are non-reentrant; callers serialise access.
package game

import (
	"context"

	"paint-bots/client/internal/display"
	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/journal"
	"paint-bots/client/internal/render"
	"paint-bots/client/internal/sim"
	"paint-bots/client/internal/spatial"
	"paint-bots/client/internal/telemetry"
	"paint-bots/client/logging"
	loggingLifecycle "paint-bots/client/logging/lifecycle"
	loggingSimulation "paint-bots/client/logging/simulation"
)

const (
	MetricTicks       = "arena_ticks_total"
	MetricFrames      = "arena_frames_total"
	MetricFaults      = "arena_faults_total"
	MetricPairChecks  = "arena_pair_checks_total"
	MetricContacts    = "arena_contacts_total"
	MetricEdgeBounces = "arena_edge_bounces_total"
	MetricBots        = "arena_bots"
)

// Deps are the ambient collaborators of a Context. Nil fields are replaced
// with no-op implementations.
type Deps struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
}

// Context is the explicit game state that replaces a process-wide singleton.
type Context struct {
	logger    telemetry.Logger
	publisher logging.Publisher
	metrics   telemetry.Metrics

	phase Phase
	cfg   Config
	err   error

	surface    render.Surface
	terrain    *sim.Map
	userPaint  *sim.Map
	store      *journal.TickStore
	index      spatial.Index
	controller *display.Controller
}

// New returns an uninitialized context.
func New(deps Deps) *Context {
	c := &Context{
		logger:    deps.Logger,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
	}
	if c.logger == nil {
		c.logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	if c.publisher == nil {
		c.publisher = logging.NopPublisher()
	}
	if c.metrics == nil {
		c.metrics = telemetry.Tee()
	}
	return c
}

// Phase reports the lifecycle state.
func (c *Context) Phase() Phase {
	if c == nil {
		return PhaseUninitialized
	}
	return c.phase
}

// Config returns the configuration passed to the last successful Init.
func (c *Context) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// Err returns the corrupted-state error that faulted the session, if any.
func (c *Context) Err() error {
	if c == nil || c.phase != PhaseFaulted {
		return nil
	}
	return c.err
}

// Init builds a fresh arena, replacing any previous session. On error the
// previous session is left as it was.
func (c *Context) Init(surface render.Surface, cfg Config) error {
	if c == nil {
		return fault.Misusef("game.init", "nil context")
	}
	if err := cfg.Validate(); err != nil {
		return fault.Misusef("game.init", "%v", err)
	}
	if surface == nil {
		surface = render.Nop{}
	}

	first, err := sim.Populate(sim.PopulationConfig{
		Width:       cfg.MapWidth,
		Height:      cfg.MapHeight,
		Teams:       cfg.Teams,
		BotsPerTeam: cfg.BotsPerTeam,
		Seed:        cfg.Seed,
		StartHealth: cfg.Tuning.StartHealth,
	})
	if err != nil {
		return fault.Misusef("game.init", "%v", err)
	}
	index, err := spatial.New(cfg.SpatialIndex, cfg.spatialOptions())
	if err != nil {
		return fault.Misusef("game.init", "%v", err)
	}
	for el := first.Bots.Front(); el != nil; el = el.Next() {
		index.Insert(el.Key, el.Value.Pos[0], el.Value.Pos[1])
	}
	controller, err := display.NewController(cfg.displayParams())
	if err != nil {
		return err
	}
	store := journal.NewTickStore(c.metrics)
	if err := store.Append(first); err != nil {
		return err
	}

	if c.phase != PhaseUninitialized {
		_, previous, _ := c.store.Window()
		loggingLifecycle.ContextReset(context.Background(), c.publisher, previous, loggingLifecycle.ContextResetPayload{
			PreviousTick:  previous,
			PreviousPhase: c.phase.String(),
		}, nil)
	}

	c.cfg = cfg
	c.surface = surface
	c.terrain = sim.NewMap(cfg.MapWidth, cfg.MapHeight)
	c.userPaint = sim.NewMap(cfg.MapWidth, cfg.MapHeight)
	c.store = store
	c.index = index
	c.controller = controller
	c.controller.Reset(0)
	c.err = nil
	c.phase = PhaseReady

	c.metrics.Store(MetricBots, uint64(first.Bots.Len()))
	loggingLifecycle.ContextInitialized(context.Background(), c.publisher, loggingLifecycle.ContextInitializedPayload{
		MapWidth:        cfg.MapWidth,
		MapHeight:       cfg.MapHeight,
		Bots:            first.Bots.Len(),
		Teams:           cfg.Teams,
		Seed:            cfg.Seed,
		TicksPerNetstep: cfg.TicksPerNetstep,
		TickDurationMS:  cfg.TickDurationMS,
		SpatialIndex:    string(cfg.SpatialIndex),
	}, nil)
	c.logger.Printf("arena initialized: %dx%d map, %d bots, %s index", cfg.MapWidth, cfg.MapHeight, first.Bots.Len(), cfg.SpatialIndex)
	return nil
}

// ready rejects calls outside PhaseReady with the matching error class.
func (c *Context) ready(op string) error {
	if c == nil {
		return fault.Misusef(op, "nil context")
	}
	switch c.phase {
	case PhaseReady:
		return nil
	case PhaseFaulted:
		return fault.Corruptedf(op, "session faulted: %v", c.err)
	default:
		return fault.Misusef(op, "context not initialized")
	}
}

func (c *Context) initialized(op string) error {
	if c == nil || c.phase == PhaseUninitialized {
		return fault.Misusef(op, "context not initialized")
	}
	return nil
}

// fail faults the session when err reports corrupted state and returns err.
func (c *Context) fail(op string, tick uint64, err error) error {
	if !fault.IsCorrupted(err) {
		return err
	}
	c.phase = PhaseFaulted
	c.err = err
	c.metrics.Add(MetricFaults, 1)
	loggingSimulation.SessionFaulted(context.Background(), c.publisher, tick, loggingSimulation.SessionFaultedPayload{
		Op:    op,
		Error: err.Error(),
	}, nil)
	c.logger.Printf("arena faulted during %s at tick %d: %v", op, tick, err)
	return err
}

// Tick advances the simulation by exactly one step.
func (c *Context) Tick() error {
	if err := c.ready("game.tick"); err != nil {
		return err
	}
	prev, err := c.store.Current()
	if err != nil {
		return c.fail("game.tick", 0, fault.Wrap("game.tick", err))
	}

	next, stats, err := sim.Step(prev, sim.StepEnv{
		Seed:     c.cfg.Seed,
		Timestep: c.cfg.Timestep(),
		Width:    float32(c.cfg.MapWidth),
		Height:   float32(c.cfg.MapHeight),
		Terrain:  c.terrain,
		Index:    c.index,
		Tuning:   c.cfg.Tuning,
	})
	if err != nil {
		return c.fail("game.tick", prev.Tick+1, err)
	}
	if err := c.store.Append(next); err != nil {
		return c.fail("game.tick", next.Tick, fault.Wrap("game.tick", err))
	}
	prev.ReleaseTransient()

	c.metrics.Add(MetricTicks, 1)
	c.metrics.Add(MetricPairChecks, uint64(stats.PairChecks))
	c.metrics.Add(MetricContacts, uint64(stats.Contacts))
	c.metrics.Add(MetricEdgeBounces, uint64(stats.EdgeBounces))
	c.metrics.Store(MetricBots, uint64(next.Bots.Len()))

	if next.Tick%uint64(c.cfg.TicksPerNetstep) == 0 {
		loggingSimulation.Netstep(context.Background(), c.publisher, next.Tick, loggingSimulation.NetstepPayload{
			Netstep:         next.Tick / uint64(c.cfg.TicksPerNetstep),
			TicksPerNetstep: c.cfg.TicksPerNetstep,
		}, nil)
	}
	return nil
}

// RenderFrame advances the display cursor by elapsedMS and draws the
// interpolated bots.
func (c *Context) RenderFrame(elapsedMS float64) (display.Frame, error) {
	if err := c.ready("game.render_frame"); err != nil {
		return display.Frame{}, err
	}
	frame, err := c.controller.Frame(c.store, elapsedMS)
	if err != nil {
		_, current, _ := c.store.Window()
		return display.Frame{}, c.fail("game.render_frame", current, err)
	}

	c.surface.Clear(float32(c.cfg.MapWidth), float32(c.cfg.MapHeight))
	for _, marker := range frame.Markers {
		c.surface.FillCircle(marker.Pos, c.cfg.Tuning.MarkerRadius, marker.Team)
	}
	c.surface.Present()
	c.metrics.Add(MetricFrames, 1)
	return frame, nil
}

// ReconfigureDisplay retunes the display controller. Simulation state and the
// cursor are untouched.
func (c *Context) ReconfigureDisplay(gain, targetLag float64) error {
	if err := c.initialized("game.reconfigure_display"); err != nil {
		return err
	}
	if err := c.controller.Retune(gain, targetLag); err != nil {
		return err
	}
	c.cfg.Display.Gain = gain
	c.cfg.Display.TargetLag = targetLag
	_, current, _ := c.store.Window()
	loggingSimulation.DisplayRetuned(context.Background(), c.publisher, current, loggingSimulation.DisplayRetunedPayload{
		Gain:      gain,
		TargetLag: targetLag,
	}, nil)
	return nil
}

// Netstep reports the netstep containing the current tick.
func (c *Context) Netstep() (uint64, error) {
	if err := c.initialized("game.netstep"); err != nil {
		return 0, err
	}
	_, current, _ := c.store.Window()
	return current / uint64(c.cfg.TicksPerNetstep), nil
}
