package sim

import "github.com/go-gl/mathgl/mgl32"

// NoTarget marks a bot without a target reference.
const NoTarget uint32 = 0

// Bot is one autonomous agent inside a single GameTick. Health and Target are
// carried for future rules and are not read by Step.
type Bot struct {
	ID     uint32     `msgpack:"id"`
	Pos    mgl32.Vec2 `msgpack:"pos"`
	Vel    mgl32.Vec2 `msgpack:"vel"`
	Team   uint16     `msgpack:"team"`
	Health float32    `msgpack:"health"`
	Target uint32     `msgpack:"target"`
}

// Clone returns an independent copy of the bot.
func (b *Bot) Clone() *Bot {
	if b == nil {
		return nil
	}
	cloned := *b
	return &cloned
}

// Base is a per-team placeholder entity; no rule consumes it yet.
type Base struct {
	Team      uint16     `msgpack:"team"`
	Health    float32    `msgpack:"health"`
	NextSpawn float32    `msgpack:"nextSpawn"`
	Pos       mgl32.Vec2 `msgpack:"pos"`
}
