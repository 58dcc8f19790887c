package game

import (
	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/sim"
)

// PaintBuffer returns the host-writable user paint buffer. Writes become
// visible to the simulation through ApplyPaint.
func (c *Context) PaintBuffer() (*sim.Map, error) {
	if err := c.initialized("game.paint_buffer"); err != nil {
		return nil, err
	}
	return c.userPaint, nil
}

// ApplyPaint copies rect from the user paint buffer into team's paint layer
// on the newest snapshot.
func (c *Context) ApplyPaint(team uint16, rect sim.Rect) error {
	if err := c.ready("game.apply_paint"); err != nil {
		return err
	}
	current, err := c.store.Current()
	if err != nil {
		return c.fail("game.apply_paint", 0, fault.Wrap("game.apply_paint", err))
	}
	if int(team) >= len(current.Paints) {
		return fault.Misusef("game.apply_paint", "unknown team %d", team)
	}
	layer := current.Paints[team]
	if layer == nil {
		return c.fail("game.apply_paint", current.Tick, fault.Corruptedf("game.apply_paint", "tick %d lost paint layer %d", current.Tick, team))
	}
	if !layer.Contains(rect) {
		return fault.Misusef("game.apply_paint", "rect %+v outside %dx%d map", rect, layer.W, layer.H)
	}
	if err := layer.CopyRect(c.userPaint, rect); err != nil {
		return fault.Misusef("game.apply_paint", "%v", err)
	}
	return nil
}

// PaintAt reads team's paint layer on the newest snapshot.
func (c *Context) PaintAt(team uint16, x, y uint32) (byte, error) {
	if err := c.ready("game.paint_at"); err != nil {
		return 0, err
	}
	current, err := c.store.Current()
	if err != nil {
		return 0, c.fail("game.paint_at", 0, fault.Wrap("game.paint_at", err))
	}
	if int(team) >= len(current.Paints) || current.Paints[team] == nil {
		return 0, fault.Misusef("game.paint_at", "unknown team %d", team)
	}
	value, ok := current.Paints[team].At(x, y)
	if !ok {
		return 0, fault.Misusef("game.paint_at", "(%d,%d) outside map", x, y)
	}
	return value, nil
}

// EditTerrain is the only mutation of the static map after Init.
func (c *Context) EditTerrain(x, y uint32, value byte) error {
	if err := c.initialized("game.edit_terrain"); err != nil {
		return err
	}
	if err := c.terrain.Set(x, y, value); err != nil {
		return fault.Misusef("game.edit_terrain", "%v", err)
	}
	return nil
}

// TerrainAt reads the static map.
func (c *Context) TerrainAt(x, y uint32) (byte, error) {
	if err := c.initialized("game.terrain_at"); err != nil {
		return 0, err
	}
	value, ok := c.terrain.At(x, y)
	if !ok {
		return 0, fault.Misusef("game.terrain_at", "(%d,%d) outside map", x, y)
	}
	return value, nil
}
