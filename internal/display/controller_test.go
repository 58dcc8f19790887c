package display

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/journal"
	"paint-bots/client/internal/sim"
)

func tickWithBots(t *testing.T, tick uint64, bots ...sim.Bot) *sim.GameTick {
	t.Helper()
	snapshot := sim.NewGameTick(tick)
	for i := range bots {
		bot := bots[i]
		if err := snapshot.AddBot(&bot); err != nil {
			t.Fatalf("add bot: %v", err)
		}
	}
	return snapshot
}

func storeWith(t *testing.T, ticks ...*sim.GameTick) *journal.TickStore {
	t.Helper()
	store := journal.NewTickStore(nil)
	for _, tick := range ticks {
		if err := store.Append(tick); err != nil {
			t.Fatalf("append %d: %v", tick.Tick, err)
		}
	}
	return store
}

func emptyTicks(t *testing.T, from, to uint64) []*sim.GameTick {
	t.Helper()
	ticks := make([]*sim.GameTick, 0, to-from+1)
	for tick := from; tick <= to; tick++ {
		ticks = append(ticks, sim.NewGameTick(tick))
	}
	return ticks
}

func newController(t *testing.T, params Params) *Controller {
	t.Helper()
	controller, err := NewController(params)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return controller
}

func TestFrameInterpolatesBetweenBracketingTicks(t *testing.T) {
	store := storeWith(t,
		tickWithBots(t, 5, sim.Bot{ID: 1, Pos: mgl32.Vec2{10, 4}}),
		tickWithBots(t, 6, sim.Bot{ID: 1, Pos: mgl32.Vec2{20, 8}}),
	)
	controller := newController(t, DefaultParams(50))
	controller.Reset(5.5)

	frame, err := controller.Frame(store, 0)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if frame.Floor != 5 || frame.Ceil != 6 || frame.Weight != 0.5 {
		t.Fatalf("expected bracket 5..6 at 0.5, got %d..%d at %v", frame.Floor, frame.Ceil, frame.Weight)
	}
	if len(frame.Markers) != 1 {
		t.Fatalf("expected one marker, got %d", len(frame.Markers))
	}
	if frame.Markers[0].Pos[0] != 15 || frame.Markers[0].Pos[1] != 6 {
		t.Fatalf("expected (15,6), got %v", frame.Markers[0].Pos)
	}
}

func TestFrameSkipsBotsMissingFromCeiling(t *testing.T) {
	store := storeWith(t,
		tickWithBots(t, 0, sim.Bot{ID: 1}, sim.Bot{ID: 2, Pos: mgl32.Vec2{3, 3}}),
		tickWithBots(t, 1, sim.Bot{ID: 2, Pos: mgl32.Vec2{5, 3}}),
	)
	controller := newController(t, DefaultParams(50))
	controller.Reset(0.25)

	frame, err := controller.Frame(store, 0)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if len(frame.Markers) != 1 || frame.Markers[0].ID != 2 {
		t.Fatalf("expected only bot 2, got %+v", frame.Markers)
	}
	if frame.Markers[0].Pos[0] != 3.5 {
		t.Fatalf("expected x 3.5, got %v", frame.Markers[0].Pos[0])
	}
}

func TestFrameClampsCursorToCurrentTick(t *testing.T) {
	store := storeWith(t, emptyTicks(t, 0, 6)...)
	controller := newController(t, DefaultParams(50))
	controller.Reset(10)

	frame, err := controller.Frame(store, 0)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if frame.Cursor != 6 || frame.Floor != 6 || frame.Ceil != 6 || frame.Weight != 0 {
		t.Fatalf("expected cursor clamped to 6, got %+v", frame)
	}
}

func TestFrameRatioStaysWithinBounds(t *testing.T) {
	params := DefaultParams(50)
	params.Window = 4

	far := newController(t, params)
	store := storeWith(t, emptyTicks(t, 0, 500)...)
	frame, err := far.Frame(store, 10)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if frame.Ratio != params.MaxRatio {
		t.Fatalf("expected ratio capped at %v, got %v", params.MaxRatio, frame.Ratio)
	}

	params.TargetLag = 1e9
	ahead := newController(t, params)
	ahead.Reset(500)
	frame, err = ahead.Frame(store, 10)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if frame.Ratio != params.MinRatio {
		t.Fatalf("expected ratio floored at %v, got %v", params.MinRatio, frame.Ratio)
	}
	if frame.Next <= frame.Cursor {
		t.Fatalf("expected playback to keep moving, cursor %v -> %v", frame.Cursor, frame.Next)
	}
}

func TestFrameAdvancesAndPrunes(t *testing.T) {
	params := DefaultParams(100)
	params.Gain = 1
	params.Window = 1
	params.TargetLag = 0
	store := storeWith(t, emptyTicks(t, 0, 4)...)
	controller := newController(t, params)

	// lag error 4, ratio clamped to 3, 200ms is two ticks.
	frame, err := controller.Frame(store, 200)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if frame.Ratio != 3 || frame.Next != 6 {
		t.Fatalf("expected ratio 3 and next cursor 6, got %v and %v", frame.Ratio, frame.Next)
	}
	if frame.Pruned != 4 {
		t.Fatalf("expected prune up to current tick, got %d removed", frame.Pruned)
	}
	oldest, current, _ := store.Window()
	if oldest != 4 || current != 4 {
		t.Fatalf("expected window [4,4], got [%d,%d]", oldest, current)
	}
}

func TestFrameRejectsMisuse(t *testing.T) {
	controller := newController(t, DefaultParams(50))
	if _, err := controller.Frame(journal.NewTickStore(nil), 16); !fault.IsMisuse(err) {
		t.Fatalf("expected misuse for empty store, got %v", err)
	}
	store := storeWith(t, emptyTicks(t, 0, 1)...)
	if _, err := controller.Frame(store, -1); !fault.IsMisuse(err) {
		t.Fatalf("expected misuse for negative elapsed, got %v", err)
	}
	if _, err := controller.Frame(store, math.NaN()); !fault.IsMisuse(err) {
		t.Fatalf("expected misuse for NaN elapsed, got %v", err)
	}
}

func TestRetuneKeepsState(t *testing.T) {
	store := storeWith(t, emptyTicks(t, 0, 8)...)
	controller := newController(t, DefaultParams(50))
	controller.Reset(3.25)
	if _, err := controller.Frame(store, 0); err != nil {
		t.Fatalf("frame: %v", err)
	}
	samples := controller.window.Len()

	if err := controller.Retune(2, 1); err != nil {
		t.Fatalf("retune: %v", err)
	}
	if controller.Cursor() != 3.25 || controller.window.Len() != samples {
		t.Fatalf("expected retune to keep cursor and samples")
	}
	if p := controller.Params(); p.Gain != 2 || p.TargetLag != 1 {
		t.Fatalf("expected gain 2 and lag 1, got %+v", p)
	}
	if err := controller.Retune(0, 1); !fault.IsMisuse(err) {
		t.Fatalf("expected misuse for zero gain, got %v", err)
	}
	if err := controller.Retune(1, -2); !fault.IsMisuse(err) {
		t.Fatalf("expected misuse for negative lag, got %v", err)
	}
}

func TestNewControllerValidates(t *testing.T) {
	params := DefaultParams(50)
	params.MinRatio = 0
	if _, err := NewController(params); !fault.IsMisuse(err) {
		t.Fatalf("expected misuse for zero min ratio, got %v", err)
	}
}

func TestDefaultParamsSettleUnderSteadyProduction(t *testing.T) {
	const (
		tickMS        = 50.0
		framesPerTick = 3
		ticks         = 3000
		warmUp        = 1000
	)
	store := storeWith(t, sim.NewGameTick(0))
	controller := newController(t, DefaultParams(tickMS))

	minLag, maxLag := math.Inf(1), math.Inf(-1)
	minRatio, maxRatio := math.Inf(1), math.Inf(-1)
	for tick := uint64(1); tick <= ticks; tick++ {
		if err := store.Append(sim.NewGameTick(tick)); err != nil {
			t.Fatalf("append %d: %v", tick, err)
		}
		for i := 0; i < framesPerTick; i++ {
			frame, err := controller.Frame(store, tickMS/framesPerTick)
			if err != nil {
				t.Fatalf("frame at tick %d: %v", tick, err)
			}
			if tick < warmUp {
				continue
			}
			lag := float64(tick) - frame.Next
			minLag, maxLag = math.Min(minLag, lag), math.Max(maxLag, lag)
			minRatio, maxRatio = math.Min(minRatio, frame.Ratio), math.Max(maxRatio, frame.Ratio)
		}
	}

	if minLag < 2 || maxLag > 3.5 {
		t.Fatalf("expected lag to settle within [2, 3.5], got [%.2f, %.2f]", minLag, maxLag)
	}
	if minRatio < 0.9 || maxRatio > 1.1 {
		t.Fatalf("expected ratio to settle within [0.9, 1.1], got [%.2f, %.2f]", minRatio, maxRatio)
	}
}
