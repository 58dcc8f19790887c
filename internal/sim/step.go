package sim

import (
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/spatial"
)

// StepEnv carries everything besides the previous snapshot that the step
// depends on. Identical envs and snapshots produce identical results.
type StepEnv struct {
	Seed     uint64
	Timestep float32
	Width    float32
	Height   float32
	// Terrain is read-only here; wall avoidance is not implemented yet.
	Terrain *Map
	Index   spatial.Index
	Tuning  Tuning
	// OnPairCheck observes every collision pair test, lower id first.
	OnPairCheck func(lower, higher uint32)
}

// StepStats summarises one step.
type StepStats struct {
	PairChecks  int
	Contacts    int
	EdgeBounces int
}

// Step derives tick+1 from prev and moves every bot. The index must mirror
// prev on entry and mirrors the result on success. On error the result is
// discarded and the index may be partially updated.
func Step(prev *GameTick, env StepEnv) (*GameTick, StepStats, error) {
	var stats StepStats
	if env.Index == nil {
		return nil, stats, fault.Corruptedf("sim.step", "spatial index missing")
	}
	next, err := prev.Derive()
	if err != nil {
		return nil, stats, err
	}

	rng := TickRNG(env.Seed, next.Tick)
	dt := env.Timestep
	tuning := env.Tuning
	reach := tuning.CollisionRadius
	neighbours := make([]uint32, 0, 32)

	for el := next.Bots.Front(); el != nil; el = el.Next() {
		bot := el.Value

		magnitude := rng.Float32() * tuning.AccelMax
		heading := rng.Float32() * 2 * math32.Pi
		impulse := mgl32.Vec2{math32.Cos(heading), math32.Sin(heading)}.Mul(magnitude * dt)
		bot.Vel = bot.Vel.Add(impulse)

		neighbours = env.Index.QueryBox(bot.Pos[0]-reach, bot.Pos[1]-reach, bot.Pos[0]+reach, bot.Pos[1]+reach, neighbours[:0])
		// Bucket order depends on index history; contacts resolve in id order.
		slices.Sort(neighbours)
		for i, otherID := range neighbours {
			if i > 0 && neighbours[i-1] == otherID {
				return nil, stats, fault.Corruptedf("sim.step", "duplicate bot %d in index at tick %d", otherID, next.Tick)
			}
			if otherID <= bot.ID {
				continue
			}
			other, ok := next.Bots.Get(otherID)
			if !ok {
				return nil, stats, fault.Corruptedf("sim.step", "index references unknown bot %d at tick %d", otherID, next.Tick)
			}
			stats.PairChecks++
			if env.OnPairCheck != nil {
				env.OnPairCheck(bot.ID, otherID)
			}
			if collide(bot, other, reach, tuning.Bounce) {
				stats.Contacts++
			}
		}

		bot.Vel[0] = clampComponent(bot.Vel[0], tuning.SpeedMax)
		bot.Vel[1] = clampComponent(bot.Vel[1], tuning.SpeedMax)

		old := bot.Pos
		if integrateAxis(&bot.Pos[0], &bot.Vel[0], dt, env.Width, tuning.Bounce) {
			stats.EdgeBounces++
		}
		if integrateAxis(&bot.Pos[1], &bot.Vel[1], dt, env.Height, tuning.Bounce) {
			stats.EdgeBounces++
		}

		if err := env.Index.Move(bot.ID, old[0], old[1], bot.Pos[0], bot.Pos[1]); err != nil {
			return nil, stats, fault.Wrap("sim.step", err)
		}
	}
	return next, stats, nil
}

// collide flips the velocity components of both bots along every axis on
// which they overlap and are closing.
func collide(a, b *Bot, reach, bounce float32) bool {
	sep := b.Pos.Sub(a.Pos)
	if math32.Abs(sep[0]) >= reach || math32.Abs(sep[1]) >= reach {
		return false
	}
	rel := b.Vel.Sub(a.Vel)
	hit := false
	for axis := 0; axis < 2; axis++ {
		if sep[axis]*rel[axis] >= 0 {
			continue
		}
		a.Vel[axis] = -a.Vel[axis] * bounce
		b.Vel[axis] = -b.Vel[axis] * bounce
		hit = true
	}
	return hit
}

func clampComponent(v, limit float32) float32 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// integrateAxis advances one coordinate, bouncing off [0, span) instead of
// leaving it.
func integrateAxis(pos, vel *float32, dt, span, bounce float32) bool {
	moved := *pos + *vel*dt
	if moved < 0 || moved >= span {
		*vel = -*vel * bounce
		return true
	}
	*pos = moved
	return false
}
