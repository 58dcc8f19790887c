package sim

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

// Checksum digests the bot state of a snapshot in iteration order. Paint
// layers are excluded since older snapshots no longer carry them.
func Checksum(t *GameTick) uint64 {
	if t == nil {
		return 0
	}
	hasher := xxh3.New()
	buf := make([]byte, 0, 32)
	buf = binary.LittleEndian.AppendUint64(buf, t.Tick)
	hasher.Write(buf)
	for el := t.Bots.Front(); el != nil; el = el.Next() {
		bot := el.Value
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint32(buf, bot.ID)
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(bot.Pos[0]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(bot.Pos[1]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(bot.Vel[0]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(bot.Vel[1]))
		buf = binary.LittleEndian.AppendUint16(buf, bot.Team)
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(bot.Health))
		buf = binary.LittleEndian.AppendUint32(buf, bot.Target)
		hasher.Write(buf)
	}
	return hasher.Sum64()
}
