package display

import (
	"github.com/go-gl/mathgl/mgl32"

	"paint-bots/client/internal/sim"
)

// Marker is one interpolated bot position handed to the drawing backend.
type Marker struct {
	ID   uint32
	Team uint16
	Pos  mgl32.Vec2
}

// Interpolate blends the positions of bots present in both snapshots, in the
// iteration order of from. Bots missing from to are skipped.
func Interpolate(from, to *sim.GameTick, weight float32, dst []Marker) []Marker {
	if from == nil || to == nil {
		return dst
	}
	for el := from.Bots.Front(); el != nil; el = el.Next() {
		a := el.Value
		b, ok := to.Bots.Get(el.Key)
		if !ok {
			continue
		}
		dst = append(dst, Marker{
			ID:   a.ID,
			Team: a.Team,
			Pos:  a.Pos.Add(b.Pos.Sub(a.Pos).Mul(weight)),
		})
	}
	return dst
}
