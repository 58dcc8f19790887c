package sim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"paint-bots/client/internal/fault"
)

func TestAddBotRejectsDuplicates(t *testing.T) {
	tick := NewGameTick(4)
	if err := tick.AddBot(&Bot{ID: 1}); err != nil {
		t.Fatalf("add bot: %v", err)
	}
	err := tick.AddBot(&Bot{ID: 1})
	if !fault.IsCorrupted(err) {
		t.Fatalf("expected corrupted error for duplicate id, got %v", err)
	}
}

func TestDeriveCopiesBots(t *testing.T) {
	prev := NewGameTick(9)
	if err := prev.AddBot(&Bot{ID: 2, Pos: mgl32.Vec2{1, 2}}); err != nil {
		t.Fatalf("add bot: %v", err)
	}
	prev.TeamBotCount = []uint32{1}

	next, err := prev.Derive()
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if next.Tick != 10 {
		t.Fatalf("expected tick 10, got %d", next.Tick)
	}
	moved, _ := next.Bot(2)
	moved.Pos[0] = 50
	next.TeamBotCount[0] = 7

	original, _ := prev.Bot(2)
	if original.Pos[0] != 1 {
		t.Fatalf("expected previous bot untouched, got x %v", original.Pos[0])
	}
	if prev.TeamBotCount[0] != 1 {
		t.Fatalf("expected previous counts untouched, got %d", prev.TeamBotCount[0])
	}
}

func TestDeriveDetectsKeyMismatch(t *testing.T) {
	prev := NewGameTick(0)
	prev.Bots.Set(5, &Bot{ID: 6})
	if _, err := prev.Derive(); !fault.IsCorrupted(err) {
		t.Fatalf("expected corrupted error, got %v", err)
	}
}

func TestPopulateAssignsTeamsAndIDs(t *testing.T) {
	tick, err := Populate(PopulationConfig{Width: 50, Height: 40, Teams: 3, BotsPerTeam: 4, Seed: 11, StartHealth: 100})
	if err != nil {
		t.Fatalf("populate: %v", err)
	}
	bots := tick.BotList()
	if len(bots) != 12 {
		t.Fatalf("expected 12 bots, got %d", len(bots))
	}
	for i, bot := range bots {
		if bot.ID != uint32(i+1) {
			t.Fatalf("expected id %d at position %d, got %d", i+1, i, bot.ID)
		}
		if bot.Team != uint16(i%3) {
			t.Fatalf("bot %d: expected team %d, got %d", bot.ID, i%3, bot.Team)
		}
		if bot.Pos[0] < 0 || bot.Pos[0] >= 50 || bot.Pos[1] < 0 || bot.Pos[1] >= 40 {
			t.Fatalf("bot %d placed outside map at %v", bot.ID, bot.Pos)
		}
	}
	for team, count := range tick.TeamBotCount {
		if count != 4 {
			t.Fatalf("team %d: expected 4 bots, got %d", team, count)
		}
	}
	if len(tick.Bases) != 3 || len(tick.Paints) != 3 {
		t.Fatalf("expected a base and a paint layer per team, got %d and %d", len(tick.Bases), len(tick.Paints))
	}
}

func TestMapCopyRect(t *testing.T) {
	src := NewMap(4, 3)
	for i := range src.Bytes {
		src.Bytes[i] = byte(i + 1)
	}
	dst := NewMap(4, 3)
	if err := dst.CopyRect(src, Rect{X: 1, Y: 1, W: 2, H: 2}); err != nil {
		t.Fatalf("copy: %v", err)
	}
	expected := []byte{0, 0, 0, 0, 0, 6, 7, 0, 0, 10, 11, 0}
	for i := range expected {
		if dst.Bytes[i] != expected[i] {
			t.Fatalf("byte %d: expected %d, got %d", i, expected[i], dst.Bytes[i])
		}
	}
	if err := dst.CopyRect(src, Rect{X: 3, Y: 0, W: 2, H: 1}); err == nil {
		t.Fatalf("expected out-of-map rect to fail")
	}
}
