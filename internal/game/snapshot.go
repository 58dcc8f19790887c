package game

import (
	"context"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/journal"
	"paint-bots/client/internal/sim"
	loggingSimulation "paint-bots/client/logging/simulation"
)

// SnapshotVersion is bumped whenever Snapshot changes shape.
const SnapshotVersion = 1

// Snapshot is the full-state transfer format: the newest tick plus the
// parameters needed to check it belongs to this arena.
type Snapshot struct {
	Version      int        `msgpack:"v"`
	MapWidth     uint32     `msgpack:"w"`
	MapHeight    uint32     `msgpack:"h"`
	Seed         uint64     `msgpack:"seed"`
	Tick         uint64     `msgpack:"tick"`
	Bots         []sim.Bot  `msgpack:"bots"`
	TeamBotCount []uint32   `msgpack:"teams"`
	Bases        []sim.Base `msgpack:"bases"`
	Checksum     uint64     `msgpack:"sum"`
}

// ExportSnapshot encodes the newest tick.
func (c *Context) ExportSnapshot() ([]byte, error) {
	if err := c.ready("game.export_snapshot"); err != nil {
		return nil, err
	}
	current, err := c.store.Current()
	if err != nil {
		return nil, c.fail("game.export_snapshot", 0, fault.Wrap("game.export_snapshot", err))
	}
	snapshot := Snapshot{
		Version:      SnapshotVersion,
		MapWidth:     c.cfg.MapWidth,
		MapHeight:    c.cfg.MapHeight,
		Seed:         c.cfg.Seed,
		Tick:         current.Tick,
		Bots:         make([]sim.Bot, 0, current.Bots.Len()),
		TeamBotCount: append([]uint32(nil), current.TeamBotCount...),
		Bases:        append([]sim.Base(nil), current.Bases...),
		Checksum:     sim.Checksum(current),
	}
	for el := current.Bots.Front(); el != nil; el = el.Next() {
		snapshot.Bots = append(snapshot.Bots, *el.Value)
	}
	data, err := msgpack.Marshal(&snapshot)
	if err != nil {
		return nil, fault.Misusef("game.export_snapshot", "encode: %v", err)
	}
	return data, nil
}

// DecodeSnapshot parses data without installing it.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := msgpack.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fault.Misusef("game.decode_snapshot", "decode: %v", err)
	}
	if snapshot.Version != SnapshotVersion {
		return Snapshot{}, fault.Misusef("game.decode_snapshot", "unsupported snapshot version %d", snapshot.Version)
	}
	return snapshot, nil
}

// Resync replaces the tick history with the snapshot in data, rebuilds the
// spatial index and restarts the display at that tick. It also recovers a
// faulted session. Invalid snapshots are rejected without side effects.
func (c *Context) Resync(data []byte) error {
	if err := c.initialized("game.resync"); err != nil {
		return err
	}
	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	if snapshot.MapWidth != c.cfg.MapWidth || snapshot.MapHeight != c.cfg.MapHeight {
		return fault.Misusef("game.resync", "snapshot map %dx%d does not match arena %dx%d", snapshot.MapWidth, snapshot.MapHeight, c.cfg.MapWidth, c.cfg.MapHeight)
	}
	if snapshot.Seed != c.cfg.Seed {
		return fault.Misusef("game.resync", "snapshot seed %d does not match arena seed %d", snapshot.Seed, c.cfg.Seed)
	}

	if snapshot.Tick == math.MaxUint64 {
		return fault.Misusef("game.resync", "snapshot tick %d leaves no room to advance", snapshot.Tick)
	}
	if len(snapshot.TeamBotCount) != int(c.cfg.Teams) || len(snapshot.Bases) != int(c.cfg.Teams) {
		return fault.Misusef("game.resync", "snapshot carries %d team counts and %d bases for %d teams", len(snapshot.TeamBotCount), len(snapshot.Bases), c.cfg.Teams)
	}

	tick := sim.NewGameTick(snapshot.Tick)
	width, height := float32(c.cfg.MapWidth), float32(c.cfg.MapHeight)
	for i := range snapshot.Bots {
		bot := snapshot.Bots[i]
		// Written so NaN fails the check.
		if !(bot.Pos[0] >= 0 && bot.Pos[0] < width) || !(bot.Pos[1] >= 0 && bot.Pos[1] < height) {
			return fault.Misusef("game.resync", "bot %d at %v outside map", bot.ID, bot.Pos)
		}
		if !finite32(bot.Vel[0]) || !finite32(bot.Vel[1]) {
			return fault.Misusef("game.resync", "bot %d has non-finite velocity %v", bot.ID, bot.Vel)
		}
		if bot.Team >= c.cfg.Teams {
			return fault.Misusef("game.resync", "bot %d on unknown team %d", bot.ID, bot.Team)
		}
		if err := tick.AddBot(&bot); err != nil {
			return fault.Misusef("game.resync", "%v", err)
		}
	}
	if sum := sim.Checksum(tick); sum != snapshot.Checksum {
		return fault.Misusef("game.resync", "checksum mismatch: got %x, snapshot says %x", sum, snapshot.Checksum)
	}
	tick.TeamBotCount = snapshot.TeamBotCount
	tick.Bases = snapshot.Bases
	tick.Paints = c.resyncPaints()

	store := journal.NewTickStore(c.metrics)
	if err := store.Append(tick); err != nil {
		return err
	}
	c.index.Reset()
	for el := tick.Bots.Front(); el != nil; el = el.Next() {
		c.index.Insert(el.Key, el.Value.Pos[0], el.Value.Pos[1])
	}
	wasFaulted := c.phase == PhaseFaulted
	c.store = store
	c.controller.Reset(float64(tick.Tick))
	c.phase = PhaseReady
	c.err = nil

	c.metrics.Store(MetricBots, uint64(tick.Bots.Len()))
	loggingSimulation.Resynced(context.Background(), c.publisher, tick.Tick, loggingSimulation.ResyncedPayload{
		Bots:     tick.Bots.Len(),
		Checksum: snapshot.Checksum,
		Faulted:  wasFaulted,
	}, nil)
	c.logger.Printf("arena resynced to tick %d with %d bots", tick.Tick, tick.Bots.Len())
	return nil
}

// resyncPaints keeps the newest paint layers when they are still intact and
// otherwise starts from blank layers.
func (c *Context) resyncPaints() []*sim.Map {
	if current, err := c.store.Current(); err == nil && len(current.Paints) == int(c.cfg.Teams) {
		intact := true
		for _, layer := range current.Paints {
			if layer == nil {
				intact = false
				break
			}
		}
		if intact {
			return current.Paints
		}
	}
	paints := make([]*sim.Map, c.cfg.Teams)
	for i := range paints {
		paints[i] = sim.NewMap(c.cfg.MapWidth, c.cfg.MapHeight)
	}
	return paints
}

func finite32(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
