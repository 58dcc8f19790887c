package game

import "paint-bots/client/internal/sim"

// Diagnostics is a point-in-time summary served at /diagnostics.
type Diagnostics struct {
	Phase       string  `json:"phase"`
	CurrentTick uint64  `json:"currentTick"`
	OldestTick  uint64  `json:"oldestTick"`
	Retained    int     `json:"retained"`
	Netstep     uint64  `json:"netstep"`
	Cursor      float64 `json:"cursor"`
	Lag         float64 `json:"lag"`
	Ratio       float64 `json:"ratio"`
	MeanLag     float64 `json:"meanLag"`
	Gain        float64 `json:"gain"`
	TargetLag   float64 `json:"targetLag"`
	Bots        int     `json:"bots"`
	IndexSize   int     `json:"indexSize"`
	Checksum    uint64  `json:"checksum"`
	Error       string  `json:"error,omitempty"`
}

// Diagnostics never fails; an uninitialized context reports only its phase.
func (c *Context) Diagnostics() Diagnostics {
	diag := Diagnostics{Phase: c.Phase().String()}
	if c == nil || c.phase == PhaseUninitialized {
		return diag
	}
	if c.err != nil {
		diag.Error = c.err.Error()
	}
	oldest, current, ok := c.store.Window()
	if ok {
		diag.OldestTick = oldest
		diag.CurrentTick = current
		diag.Netstep = current / uint64(c.cfg.TicksPerNetstep)
	}
	diag.Retained = c.store.Len()
	diag.Cursor = c.controller.Cursor()
	diag.Lag = float64(current) - diag.Cursor
	diag.Ratio = c.controller.Ratio()
	diag.MeanLag = c.controller.MeanLag()
	params := c.controller.Params()
	diag.Gain = params.Gain
	diag.TargetLag = params.TargetLag
	diag.IndexSize = c.index.Len()
	if snapshot, err := c.store.Current(); err == nil {
		diag.Bots = snapshot.Bots.Len()
		diag.Checksum = sim.Checksum(snapshot)
	}
	return diag
}
