package sim

import (
	"github.com/elliotchance/orderedmap/v2"

	"paint-bots/client/internal/fault"
)

// GameTick is one simulation snapshot. Bots iterate in insertion order, which
// population seeding makes ascending by id; Step relies on that order.
type GameTick struct {
	Tick         uint64
	Bots         *orderedmap.OrderedMap[uint32, *Bot]
	Paints       []*Map
	TeamBotCount []uint32
	Bases        []Base
}

// NewGameTick returns an empty snapshot for tick.
func NewGameTick(tick uint64) *GameTick {
	return &GameTick{
		Tick: tick,
		Bots: orderedmap.NewOrderedMap[uint32, *Bot](),
	}
}

// AddBot inserts bot, rejecting duplicate ids.
func (t *GameTick) AddBot(bot *Bot) error {
	if t == nil || bot == nil {
		return fault.Corruptedf("sim.add_bot", "nil snapshot or bot")
	}
	if _, exists := t.Bots.Get(bot.ID); exists {
		return fault.Corruptedf("sim.add_bot", "duplicate bot id %d in tick %d", bot.ID, t.Tick)
	}
	t.Bots.Set(bot.ID, bot)
	return nil
}

// Bot looks up a bot by id.
func (t *GameTick) Bot(id uint32) (*Bot, bool) {
	if t == nil || t.Bots == nil {
		return nil, false
	}
	return t.Bots.Get(id)
}

// BotList returns the bots in iteration order.
func (t *GameTick) BotList() []*Bot {
	if t == nil || t.Bots == nil {
		return nil
	}
	bots := make([]*Bot, 0, t.Bots.Len())
	for el := t.Bots.Front(); el != nil; el = el.Next() {
		bots = append(bots, el.Value)
	}
	return bots
}

// Derive copies the snapshot into tick+1. Bots, counts and bases are deep
// copied; paint layers are shared until the caller commits the new snapshot
// and releases them from the old one with ReleaseTransient.
func (t *GameTick) Derive() (*GameTick, error) {
	if t == nil {
		return nil, fault.Corruptedf("sim.derive", "nil snapshot")
	}
	next := NewGameTick(t.Tick + 1)
	for el := t.Bots.Front(); el != nil; el = el.Next() {
		if el.Value == nil || el.Value.ID != el.Key {
			return nil, fault.Corruptedf("sim.derive", "bot entry %d inconsistent in tick %d", el.Key, t.Tick)
		}
		next.Bots.Set(el.Key, el.Value.Clone())
	}
	next.Paints = append([]*Map(nil), t.Paints...)
	next.TeamBotCount = append([]uint32(nil), t.TeamBotCount...)
	next.Bases = append([]Base(nil), t.Bases...)
	return next, nil
}

// ReleaseTransient drops the paint layers once the snapshot is no longer the
// newest. Interpolation never reads them.
func (t *GameTick) ReleaseTransient() {
	if t == nil {
		return
	}
	t.Paints = nil
}

// HasTransient reports whether the snapshot still owns paint layers.
func (t *GameTick) HasTransient() bool {
	return t != nil && t.Paints != nil
}
