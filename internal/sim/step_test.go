package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/spatial"
)

func newIndexedTick(t *testing.T, width, height float32, bots ...*Bot) (*GameTick, *spatial.Grid) {
	t.Helper()
	tick := NewGameTick(0)
	grid := spatial.NewGrid(width, height, 3, spatial.DefaultScanCap)
	for _, bot := range bots {
		if err := tick.AddBot(bot); err != nil {
			t.Fatalf("add bot %d: %v", bot.ID, err)
		}
		grid.Insert(bot.ID, bot.Pos[0], bot.Pos[1])
	}
	return tick, grid
}

func runSteps(t *testing.T, seed uint64, steps int) []*GameTick {
	t.Helper()
	const width, height = 128, 96
	start, err := Populate(PopulationConfig{Width: width, Height: height, Teams: 3, BotsPerTeam: 20, Seed: seed, StartHealth: 100})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	grid := spatial.NewGrid(width, height, 4, spatial.DefaultScanCap)
	for _, bot := range start.BotList() {
		grid.Insert(bot.ID, bot.Pos[0], bot.Pos[1])
	}
	env := StepEnv{Seed: seed, Timestep: 0.05, Width: width, Height: height, Index: grid, Tuning: DefaultTuning()}
	history := []*GameTick{start}
	current := start
	for i := 0; i < steps; i++ {
		next, _, err := Step(current, env)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		history = append(history, next)
		current = next
	}
	return history
}

func TestStepIsDeterministic(t *testing.T) {
	first := runSteps(t, 42, 60)
	second := runSteps(t, 42, 60)
	for i := range first {
		a, b := first[i].BotList(), second[i].BotList()
		if len(a) != len(b) {
			t.Fatalf("tick %d: expected %d bots, got %d", i, len(a), len(b))
		}
		for j := range a {
			if *a[j] != *b[j] {
				t.Fatalf("tick %d bot %d diverged: %+v vs %+v", i, a[j].ID, *a[j], *b[j])
			}
		}
		if Checksum(first[i]) != Checksum(second[i]) {
			t.Fatalf("tick %d: checksum mismatch", i)
		}
	}

	other := runSteps(t, 43, 60)
	if Checksum(other[60]) == Checksum(first[60]) {
		t.Fatalf("expected a different seed to produce a different state")
	}
}

func TestStepKeepsBotsInsideMap(t *testing.T) {
	history := runSteps(t, 7, 200)
	for _, tick := range history {
		for _, bot := range tick.BotList() {
			if bot.Pos[0] < 0 || bot.Pos[0] >= 128 || bot.Pos[1] < 0 || bot.Pos[1] >= 96 {
				t.Fatalf("tick %d: bot %d escaped to %v", tick.Tick, bot.ID, bot.Pos)
			}
			if bot.Vel[0] > 40 || bot.Vel[0] < -40 || bot.Vel[1] > 40 || bot.Vel[1] < -40 {
				t.Fatalf("tick %d: bot %d velocity %v exceeds clamp", tick.Tick, bot.ID, bot.Vel)
			}
		}
	}
}

func TestStepEdgeBounce(t *testing.T) {
	const width, height = 64, 64
	bot := &Bot{ID: 1, Pos: mgl32.Vec2{width - 1, 20}, Vel: mgl32.Vec2{10, 0}}
	prev, grid := newIndexedTick(t, width, height, bot)
	tuning := DefaultTuning()
	tuning.AccelMax = 0

	next, stats, err := Step(prev, StepEnv{Seed: 1, Timestep: 0.25, Width: width, Height: height, Index: grid, Tuning: tuning})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	moved, _ := next.Bot(1)
	if moved.Pos[0] != width-1 {
		t.Fatalf("expected x to stay at %v, got %v", float32(width-1), moved.Pos[0])
	}
	if !mgl32.FloatEqualThreshold(moved.Vel[0], -4.2, 1e-5) {
		t.Fatalf("expected vx -4.2, got %v", moved.Vel[0])
	}
	if stats.EdgeBounces != 1 {
		t.Fatalf("expected one edge bounce, got %d", stats.EdgeBounces)
	}
	if original, _ := prev.Bot(1); original.Vel[0] != 10 {
		t.Fatalf("expected previous snapshot untouched, got vx %v", original.Vel[0])
	}
}

func TestStepChecksEachPairOnce(t *testing.T) {
	a := &Bot{ID: 3, Pos: mgl32.Vec2{30, 30}, Vel: mgl32.Vec2{5, 0}}
	b := &Bot{ID: 7, Pos: mgl32.Vec2{33, 31}, Vel: mgl32.Vec2{-5, 0}}
	prev, grid := newIndexedTick(t, 64, 64, a, b)
	tuning := DefaultTuning()
	tuning.AccelMax = 0

	checks := map[[2]uint32]int{}
	env := StepEnv{
		Seed: 9, Timestep: 0.01, Width: 64, Height: 64, Index: grid, Tuning: tuning,
		OnPairCheck: func(lower, higher uint32) { checks[[2]uint32{lower, higher}]++ },
	}
	next, stats, err := Step(prev, env)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(checks) != 1 || checks[[2]uint32{3, 7}] != 1 {
		t.Fatalf("expected exactly one (3,7) check, got %v", checks)
	}
	if stats.PairChecks != 1 || stats.Contacts != 1 {
		t.Fatalf("expected one check and one contact, got %+v", stats)
	}
	low, _ := next.Bot(3)
	high, _ := next.Bot(7)
	if !mgl32.FloatEqualThreshold(low.Vel[0], -2.1, 1e-5) || !mgl32.FloatEqualThreshold(high.Vel[0], 2.1, 1e-5) {
		t.Fatalf("expected closing bots to reflect once, got %v and %v", low.Vel[0], high.Vel[0])
	}
}

func TestStepRejectsDuplicateIndexEntries(t *testing.T) {
	a := &Bot{ID: 3, Pos: mgl32.Vec2{30, 30}, Vel: mgl32.Vec2{5, 0}}
	b := &Bot{ID: 7, Pos: mgl32.Vec2{33, 31}, Vel: mgl32.Vec2{-5, 0}}
	prev, grid := newIndexedTick(t, 64, 64, a, b)
	grid.Insert(b.ID, b.Pos[0], b.Pos[1])
	tuning := DefaultTuning()
	tuning.AccelMax = 0

	checks := 0
	env := StepEnv{
		Seed: 9, Timestep: 0.01, Width: 64, Height: 64, Index: grid, Tuning: tuning,
		OnPairCheck: func(lower, higher uint32) { checks++ },
	}
	if _, _, err := Step(prev, env); !fault.IsCorrupted(err) {
		t.Fatalf("expected corrupted error for duplicate index entry, got %v", err)
	}
	if checks > 1 {
		t.Fatalf("expected the duplicated pair to be checked at most once, got %d", checks)
	}
	if bot, _ := prev.Bot(7); bot.Vel[0] != -5 {
		t.Fatalf("expected previous tick untouched, got vx %v", bot.Vel[0])
	}
}

func TestStepIgnoresSeparatingPairs(t *testing.T) {
	a := &Bot{ID: 1, Pos: mgl32.Vec2{30, 30}, Vel: mgl32.Vec2{-5, 0}}
	b := &Bot{ID: 2, Pos: mgl32.Vec2{33, 30}, Vel: mgl32.Vec2{5, 0}}
	prev, grid := newIndexedTick(t, 64, 64, a, b)
	tuning := DefaultTuning()
	tuning.AccelMax = 0

	next, stats, err := Step(prev, StepEnv{Timestep: 0.01, Width: 64, Height: 64, Index: grid, Tuning: tuning})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if stats.Contacts != 0 {
		t.Fatalf("expected no contact, got %d", stats.Contacts)
	}
	if bot, _ := next.Bot(1); bot.Vel[0] != -5 {
		t.Fatalf("expected velocity unchanged, got %v", bot.Vel[0])
	}
}

func TestStepKeepsIndexMirrored(t *testing.T) {
	const width, height = 128, 96
	start, err := Populate(PopulationConfig{Width: width, Height: height, Teams: 2, BotsPerTeam: 30, Seed: 5, StartHealth: 100})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	grid := spatial.NewGrid(width, height, 4, spatial.DefaultScanCap)
	for _, bot := range start.BotList() {
		grid.Insert(bot.ID, bot.Pos[0], bot.Pos[1])
	}
	env := StepEnv{Seed: 5, Timestep: 0.1, Width: width, Height: height, Index: grid, Tuning: DefaultTuning()}
	current := start
	for i := 0; i < 40; i++ {
		if current, _, err = Step(current, env); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if grid.Len() != current.Bots.Len() {
		t.Fatalf("expected %d indexed ids, got %d", current.Bots.Len(), grid.Len())
	}
	for _, bot := range current.BotList() {
		home := grid.Cell(bot.Pos[0], bot.Pos[1])
		for key, members := range grid.Occupied() {
			count := 0
			for _, id := range members {
				if id == bot.ID {
					count++
				}
			}
			if key == home && count != 1 {
				t.Fatalf("bot %d: expected once in home cell %v, got %d", bot.ID, key, count)
			}
			if key != home && count != 0 {
				t.Fatalf("bot %d: stale membership in cell %v", bot.ID, key)
			}
		}
	}
}

func TestStepAbortsWhenIndexIsStale(t *testing.T) {
	bot := &Bot{ID: 1, Pos: mgl32.Vec2{1, 1}, Vel: mgl32.Vec2{40, 0}}
	prev := NewGameTick(0)
	if err := prev.AddBot(bot); err != nil {
		t.Fatalf("add bot: %v", err)
	}
	grid := spatial.NewGrid(64, 64, 3, spatial.DefaultScanCap)
	tuning := DefaultTuning()
	tuning.AccelMax = 0

	_, _, err := Step(prev, StepEnv{Timestep: 1, Width: 64, Height: 64, Index: grid, Tuning: tuning})
	if !fault.IsCorrupted(err) {
		t.Fatalf("expected corrupted error, got %v", err)
	}
}

func TestStepAdvancesTickAndSharesPaint(t *testing.T) {
	start, err := Populate(PopulationConfig{Width: 32, Height: 32, Teams: 2, BotsPerTeam: 1, Seed: 3, StartHealth: 100})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	grid := spatial.NewGrid(32, 32, 2, spatial.DefaultScanCap)
	for _, bot := range start.BotList() {
		grid.Insert(bot.ID, bot.Pos[0], bot.Pos[1])
	}
	next, _, err := Step(start, StepEnv{Seed: 3, Timestep: 0.1, Width: 32, Height: 32, Index: grid, Tuning: DefaultTuning()})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if next.Tick != 1 {
		t.Fatalf("expected tick 1, got %d", next.Tick)
	}
	if len(next.Paints) != 2 || next.Paints[0] != start.Paints[0] {
		t.Fatalf("expected paint layers handed to the new snapshot")
	}
	start.ReleaseTransient()
	if start.HasTransient() || !next.HasTransient() {
		t.Fatalf("expected paint to survive only on the newest snapshot")
	}
}
