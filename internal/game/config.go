package game

import (
	"fmt"

	"paint-bots/client/internal/display"
	"paint-bots/client/internal/sim"
	"paint-bots/client/internal/spatial"
)

// Config is the static arena configuration passed to Init.
type Config struct {
	MapWidth        uint32
	MapHeight       uint32
	TicksPerNetstep uint32
	TickDurationMS  uint32
	Seed            uint64
	Teams           uint16
	BotsPerTeam     uint32

	Tuning sim.Tuning

	SpatialIndex   spatial.Kind
	DivisionsLog2  uint
	ScanCap        int
	SplitThreshold int
	MinRegion      float32

	// Display.TickDurationMS is ignored; TickDurationMS above is used.
	Display display.Params
}

// DefaultConfig mirrors the stock arena: a 640x480 map at 20 ticks per second.
func DefaultConfig() Config {
	return Config{
		MapWidth:        640,
		MapHeight:       480,
		TicksPerNetstep: 4,
		TickDurationMS:  50,
		Seed:            1,
		Teams:           4,
		BotsPerTeam:     64,
		Tuning:          sim.DefaultTuning(),
		SpatialIndex:    spatial.KindGrid,
		DivisionsLog2:   spatial.DefaultDivisionsLog2,
		ScanCap:         spatial.DefaultScanCap,
		SplitThreshold:  spatial.DefaultSplitThreshold,
		MinRegion:       spatial.DefaultMinRegion,
		Display:         display.DefaultParams(50),
	}
}

// Timestep is the simulated seconds covered by one tick.
func (c Config) Timestep() float32 {
	return float32(c.TickDurationMS) / 1000
}

func (c Config) displayParams() display.Params {
	params := c.Display
	params.TickDurationMS = float64(c.TickDurationMS)
	return params
}

func (c Config) spatialOptions() spatial.Options {
	return spatial.Options{
		Width:          float32(c.MapWidth),
		Height:         float32(c.MapHeight),
		DivisionsLog2:  c.DivisionsLog2,
		ScanCap:        c.ScanCap,
		SplitThreshold: c.SplitThreshold,
		MinRegion:      c.MinRegion,
	}
}

// Validate reports the first field that would prevent Init.
func (c Config) Validate() error {
	if c.MapWidth == 0 || c.MapHeight == 0 {
		return fmt.Errorf("map must be non-empty, got %dx%d", c.MapWidth, c.MapHeight)
	}
	if c.TickDurationMS == 0 {
		return fmt.Errorf("tick duration must be > 0")
	}
	if c.TicksPerNetstep == 0 {
		return fmt.Errorf("ticks per netstep must be > 0")
	}
	if c.Teams == 0 {
		return fmt.Errorf("at least one team required")
	}
	if err := c.Tuning.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	if _, err := spatial.ParseKind(string(c.SpatialIndex)); err != nil {
		return err
	}
	if err := c.displayParams().Validate(); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
