// Package display maps wall-clock time onto the tick history. A feedback
// controller steers a fractional cursor toward a target lag behind the newest
// tick using the mean of recent lag errors.
package display

import (
	"fmt"
	"math"

	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/sim"
)

const (
	DefaultGain      = 1.0
	DefaultTargetLag = 2.0
	DefaultMinRatio  = 0.1
	DefaultMaxRatio  = 3.0
	DefaultWindow    = 10
)

// TickSource is the part of the tick history the controller reads and prunes.
type TickSource interface {
	Window() (oldest, current uint64, ok bool)
	Get(tick uint64) (*sim.GameTick, error)
	Prune(floor uint64) (int, error)
}

// Params configures a Controller.
type Params struct {
	Gain      float64
	TargetLag float64
	MinRatio  float64
	MaxRatio  float64
	// Window is the number of lag samples averaged.
	Window int
	// TickDurationMS converts elapsed wall time into ticks.
	TickDurationMS float64
}

// DefaultParams returns the stock tuning for the given tick duration.
func DefaultParams(tickDurationMS float64) Params {
	return Params{
		Gain:           DefaultGain,
		TargetLag:      DefaultTargetLag,
		MinRatio:       DefaultMinRatio,
		MaxRatio:       DefaultMaxRatio,
		Window:         DefaultWindow,
		TickDurationMS: tickDurationMS,
	}
}

// Validate reports the first invalid field.
func (p Params) Validate() error {
	switch {
	case !finite(p.Gain) || p.Gain <= 0:
		return fmt.Errorf("gain must be > 0, got %v", p.Gain)
	case !finite(p.TargetLag) || p.TargetLag < 0:
		return fmt.Errorf("target lag must be >= 0, got %v", p.TargetLag)
	case !finite(p.MinRatio) || p.MinRatio <= 0:
		return fmt.Errorf("min ratio must be > 0, got %v", p.MinRatio)
	case !finite(p.MaxRatio) || p.MaxRatio < p.MinRatio:
		return fmt.Errorf("max ratio %v below min ratio %v", p.MaxRatio, p.MinRatio)
	case p.Window < 1:
		return fmt.Errorf("lag window must hold at least one sample, got %d", p.Window)
	case !finite(p.TickDurationMS) || p.TickDurationMS <= 0:
		return fmt.Errorf("tick duration must be > 0, got %v", p.TickDurationMS)
	}
	return nil
}

// Frame is the result of one controller update.
type Frame struct {
	// Cursor is the position used for this frame's interpolation.
	Cursor  float64
	Floor   uint64
	Ceil    uint64
	Weight  float32
	Markers []Marker
	// LagError is this frame's sample; MeanLag the window mean after it.
	LagError float64
	MeanLag  float64
	Ratio    float64
	// Next is the cursor after advancing, Pruned the snapshots dropped.
	Next   float64
	Pruned int
}

// Controller owns the display cursor and lag window. It is not safe for
// concurrent use.
type Controller struct {
	params Params
	cursor float64
	ratio  float64
	window *LagWindow
}

// NewController validates params and starts the cursor at zero.
func NewController(params Params) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, fault.Misusef("display.new", "%v", err)
	}
	return &Controller{
		params: params,
		ratio:  1,
		window: NewLagWindow(params.Window),
	}, nil
}

// Params returns the active tuning.
func (c *Controller) Params() Params {
	if c == nil {
		return Params{}
	}
	return c.params
}

// Cursor returns the fractional tick position.
func (c *Controller) Cursor() float64 {
	if c == nil {
		return 0
	}
	return c.cursor
}

// Ratio returns the advance ratio computed by the last frame.
func (c *Controller) Ratio() float64 {
	if c == nil {
		return 0
	}
	return c.ratio
}

// MeanLag returns the current window mean.
func (c *Controller) MeanLag() float64 {
	if c == nil {
		return 0
	}
	return c.window.Mean()
}

// Retune swaps gain and target lag without touching cursor or samples.
func (c *Controller) Retune(gain, targetLag float64) error {
	if c == nil {
		return fault.Misusef("display.retune", "nil controller")
	}
	next := c.params
	next.Gain = gain
	next.TargetLag = targetLag
	if err := next.Validate(); err != nil {
		return fault.Misusef("display.retune", "%v", err)
	}
	c.params = next
	return nil
}

// Reset places the cursor at tick and forgets every lag sample.
func (c *Controller) Reset(cursor float64) {
	if c == nil {
		return
	}
	c.cursor = cursor
	c.ratio = 1
	c.window.Reset()
}

// Frame advances the controller by elapsedMS of wall time, returning the
// markers interpolated at the cursor position reached by the previous frame.
func (c *Controller) Frame(src TickSource, elapsedMS float64) (Frame, error) {
	if c == nil || src == nil {
		return Frame{}, fault.Misusef("display.frame", "controller or tick source missing")
	}
	if !finite(elapsedMS) || elapsedMS < 0 {
		return Frame{}, fault.Misusef("display.frame", "elapsed time must be finite and >= 0, got %v", elapsedMS)
	}
	_, current, ok := src.Window()
	if !ok {
		return Frame{}, fault.Misusef("display.frame", "no ticks available")
	}

	top := float64(current)
	if c.cursor > top {
		c.cursor = top
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
	floor := math.Floor(c.cursor)
	ceil := math.Ceil(c.cursor)
	frame := Frame{
		Cursor: c.cursor,
		Floor:  uint64(floor),
		Ceil:   uint64(ceil),
		Weight: float32(c.cursor - floor),
	}

	from, err := src.Get(frame.Floor)
	if err != nil {
		return Frame{}, err
	}
	to := from
	if frame.Ceil != frame.Floor {
		if to, err = src.Get(frame.Ceil); err != nil {
			return Frame{}, err
		}
	}
	frame.Markers = Interpolate(from, to, frame.Weight, make([]Marker, 0, from.Bots.Len()))

	frame.LagError = (top - c.params.TargetLag) - c.cursor
	frame.MeanLag = c.window.Push(frame.LagError)
	c.ratio = clamp(c.params.Gain*frame.MeanLag, c.params.MinRatio, c.params.MaxRatio)
	frame.Ratio = c.ratio

	c.cursor += elapsedMS / c.params.TickDurationMS * c.ratio
	frame.Next = c.cursor

	pruneFloor := uint64(math.Floor(c.cursor))
	if pruneFloor > current {
		pruneFloor = current
	}
	if frame.Pruned, err = src.Prune(pruneFloor); err != nil {
		return Frame{}, err
	}
	return frame, nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
