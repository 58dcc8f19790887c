// Package driver runs the tick and frame loops against one game context. All
// access to the context goes through the session mutex.
package driver

import (
	"context"
	"sync"
	"time"

	"paint-bots/client/internal/display"
	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/game"
	"paint-bots/client/internal/telemetry"
	"paint-bots/client/logging"
	loggingSimulation "paint-bots/client/logging/simulation"
)

// Config tunes the loops.
type Config struct {
	TickDuration time.Duration
	FrameRate    int
	// MaxCatchUp bounds the wall time handed to one frame after a stall.
	MaxCatchUp time.Duration
}

// Deps are the ambient collaborators of a Session.
type Deps struct {
	Clock     logging.Clock
	Logger    telemetry.Logger
	Publisher logging.Publisher
}

// Hooks observe loop iterations. All hooks run with the session lock released.
type Hooks struct {
	AfterTick  func(TickResult)
	AfterFrame func(FrameResult)
	// OnFault fires once when the session enters the faulted phase.
	OnFault func(err error)
}

// TickResult describes one tick.
type TickResult struct {
	Tick     uint64
	Duration time.Duration
	Budget   time.Duration
	Overrun  bool
	Err      error
}

// FrameResult describes one frame.
type FrameResult struct {
	Elapsed time.Duration
	Clamped bool
	Frame   display.Frame
	Err     error
}

// Arena is the part of game.Context the session drives.
type Arena interface {
	Tick() error
	RenderFrame(elapsedMS float64) (display.Frame, error)
	ReconfigureDisplay(gain, targetLag float64) error
	ExportSnapshot() ([]byte, error)
	Resync(data []byte) error
	Phase() game.Phase
	Diagnostics() game.Diagnostics
}

var _ Arena = (*game.Context)(nil)

// Session serialises ticks, frames and external calls on a game context.
type Session struct {
	mu      sync.Mutex
	game    Arena
	cfg     Config
	clock   logging.Clock
	logger  telemetry.Logger
	pub     logging.Publisher
	hooks   Hooks
	streak  uint64
	faulted bool
}

// New wraps arena. Zero config values fall back to 50ms ticks, 60 frames per
// second and a 250ms catch-up bound.
func New(arena Arena, cfg Config, deps Deps, hooks Hooks) *Session {
	if cfg.TickDuration <= 0 {
		cfg.TickDuration = 50 * time.Millisecond
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	if cfg.MaxCatchUp <= 0 {
		cfg.MaxCatchUp = 250 * time.Millisecond
	}
	if deps.Clock == nil {
		deps.Clock = logging.ClockFunc(time.Now)
	}
	if deps.Logger == nil {
		deps.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}
	return &Session{game: arena, cfg: cfg, clock: deps.Clock, logger: deps.Logger, pub: deps.Publisher, hooks: hooks}
}

// Do runs fn with exclusive access to the arena.
func (s *Session) Do(fn func(Arena) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// Diagnostics reads the context summary under the lock.
func (s *Session) Diagnostics() game.Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Diagnostics()
}

// Tick advances the context once and reports budget use.
func (s *Session) Tick() TickResult {
	s.mu.Lock()
	start := s.clock.Now()
	err := s.game.Tick()
	duration := s.clock.Now().Sub(start)
	diag := s.game.Diagnostics()
	result := TickResult{Tick: diag.CurrentTick, Duration: duration, Budget: s.cfg.TickDuration, Err: err}
	if duration > s.cfg.TickDuration {
		s.streak++
		result.Overrun = true
		loggingSimulation.TickBudgetOverrun(context.Background(), s.pub, diag.CurrentTick, loggingSimulation.TickBudgetOverrunPayload{
			DurationMillis: duration.Milliseconds(),
			BudgetMillis:   s.cfg.TickDuration.Milliseconds(),
			Ratio:          float64(duration) / float64(s.cfg.TickDuration),
			Streak:         s.streak,
		}, nil)
	} else {
		s.streak = 0
	}
	newFault := s.noteFaultLocked(err)
	s.mu.Unlock()

	if newFault && s.hooks.OnFault != nil {
		s.hooks.OnFault(err)
	}
	if s.hooks.AfterTick != nil {
		s.hooks.AfterTick(result)
	}
	return result
}

// Frame renders one frame covering elapsed wall time, clamped to MaxCatchUp.
func (s *Session) Frame(elapsed time.Duration) FrameResult {
	result := FrameResult{Elapsed: elapsed}
	if elapsed < 0 {
		result.Elapsed = 0
	}
	if result.Elapsed > s.cfg.MaxCatchUp {
		result.Elapsed = s.cfg.MaxCatchUp
		result.Clamped = true
	}

	s.mu.Lock()
	result.Frame, result.Err = s.game.RenderFrame(float64(result.Elapsed) / float64(time.Millisecond))
	newFault := s.noteFaultLocked(result.Err)
	s.mu.Unlock()

	if newFault && s.hooks.OnFault != nil {
		s.hooks.OnFault(result.Err)
	}
	if s.hooks.AfterFrame != nil {
		s.hooks.AfterFrame(result)
	}
	return result
}

func (s *Session) noteFaultLocked(err error) bool {
	if !fault.IsCorrupted(err) {
		if s.game.Phase() == game.PhaseReady {
			s.faulted = false
		}
		return false
	}
	if s.faulted {
		return false
	}
	s.faulted = true
	return true
}

// Run drives both loops until ctx is cancelled. Errors are reported through
// hooks; a faulted context keeps the loops alive so a resync can recover it.
func (s *Session) Run(ctx context.Context) error {
	tickTicker := time.NewTicker(s.cfg.TickDuration)
	defer tickTicker.Stop()
	frameTicker := time.NewTicker(time.Second / time.Duration(s.cfg.FrameRate))
	defer frameTicker.Stop()

	s.logger.Printf("driver running: tick every %s, %d frames per second", s.cfg.TickDuration, s.cfg.FrameRate)
	lastFrame := s.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tickTicker.C:
			s.Tick()
		case <-frameTicker.C:
			now := s.clock.Now()
			s.Frame(now.Sub(lastFrame))
			lastFrame = now
		}
	}
}
