package sim

import "fmt"

// Tuning holds the fixed constants of the integrator.
type Tuning struct {
	// AccelMax bounds the random impulse magnitude, map units per second squared.
	AccelMax float32
	// SpeedMax clamps each velocity component independently.
	SpeedMax float32
	// Bounce scales an inverted velocity component on contact or edge hits.
	Bounce float32
	// CollisionRadius is the per-axis separation below which two bots touch.
	CollisionRadius float32
	// MarkerRadius is the drawn bot radius.
	MarkerRadius float32
	// StartHealth seeds Bot.Health.
	StartHealth float32
}

func DefaultTuning() Tuning {
	return Tuning{
		AccelMax:        80,
		SpeedMax:        40,
		Bounce:          0.42,
		CollisionRadius: 6,
		MarkerRadius:    3,
		StartHealth:     100,
	}
}

// Validate rejects tunings that would make the step diverge.
func (t Tuning) Validate() error {
	if t.AccelMax < 0 {
		return fmt.Errorf("accel max must be >= 0, got %v", t.AccelMax)
	}
	if t.SpeedMax <= 0 {
		return fmt.Errorf("speed max must be > 0, got %v", t.SpeedMax)
	}
	if t.Bounce <= 0 || t.Bounce >= 1 {
		return fmt.Errorf("bounce must be in (0,1), got %v", t.Bounce)
	}
	if t.CollisionRadius < 0 {
		return fmt.Errorf("collision radius must be >= 0, got %v", t.CollisionRadius)
	}
	return nil
}
