package sim

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PopulationConfig describes the initial arena.
type PopulationConfig struct {
	Width       uint32
	Height      uint32
	Teams       uint16
	BotsPerTeam uint32
	Seed        uint64
	StartHealth float32
}

// Populate builds tick 0. Ids run 1..N in insertion order and teams are
// assigned round-robin so every team starts with BotsPerTeam bots.
func Populate(cfg PopulationConfig) (*GameTick, error) {
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("populate: map must be non-empty, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Teams == 0 {
		return nil, fmt.Errorf("populate: at least one team required")
	}

	width := float32(cfg.Width)
	height := float32(cfg.Height)
	rng := SubsystemRNG(cfg.Seed, "population")

	tick := NewGameTick(0)
	tick.TeamBotCount = make([]uint32, cfg.Teams)
	tick.Paints = make([]*Map, cfg.Teams)
	for team := range tick.Paints {
		tick.Paints[team] = NewMap(cfg.Width, cfg.Height)
	}

	total := uint32(cfg.Teams) * cfg.BotsPerTeam
	for i := uint32(0); i < total; i++ {
		team := uint16(i % uint32(cfg.Teams))
		bot := &Bot{
			ID:     i + 1,
			Pos:    mgl32.Vec2{insideSpan(rng.Float32()*width, width), insideSpan(rng.Float32()*height, height)},
			Team:   team,
			Health: cfg.StartHealth,
			Target: NoTarget,
		}
		if err := tick.AddBot(bot); err != nil {
			return nil, err
		}
		tick.TeamBotCount[team]++
	}

	radius := math32.Min(width, height) / 3
	center := mgl32.Vec2{width / 2, height / 2}
	tick.Bases = make([]Base, cfg.Teams)
	for team := range tick.Bases {
		angle := 2 * math32.Pi * float32(team) / float32(cfg.Teams)
		tick.Bases[team] = Base{
			Team:   uint16(team),
			Health: cfg.StartHealth,
			Pos:    center.Add(mgl32.Vec2{math32.Cos(angle), math32.Sin(angle)}.Mul(radius)),
		}
	}
	return tick, nil
}

// insideSpan keeps v in [0, span) when float rounding lands on span.
func insideSpan(v, span float32) float32 {
	if v >= span {
		return math32.Nextafter(span, 0)
	}
	if v < 0 {
		return 0
	}
	return v
}
