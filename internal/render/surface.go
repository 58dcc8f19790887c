// Package render is the boundary to the drawing backend. The arena core only
// clears the surface and fills circular markers.
package render

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Surface is a canvas-style 2D target.
type Surface interface {
	Clear(width, height float32)
	// FillCircle draws a filled marker for team centred at pos.
	FillCircle(pos mgl32.Vec2, radius float32, team uint16)
	// Present ends the frame.
	Present()
}

// Nop discards every call.
type Nop struct{}

func (Nop) Clear(float32, float32) {}
func (Nop) FillCircle(mgl32.Vec2, float32, uint16) {}
func (Nop) Present() {}

// Circle is one recorded FillCircle call.
type Circle struct {
	Pos    mgl32.Vec2
	Radius float32
	Team   uint16
}

// Recorder keeps the calls of the most recent frame.
type Recorder struct {
	mu      sync.Mutex
	width   float32
	height  float32
	pending []Circle
	frame   []Circle
	frames  int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Clear(width, height float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.pending = r.pending[:0]
}

func (r *Recorder) FillCircle(pos mgl32.Vec2, radius float32, team uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, Circle{Pos: pos, Radius: radius, Team: team})
}

func (r *Recorder) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = append(r.frame[:0], r.pending...)
	r.frames++
}

// Frame returns the circles of the last presented frame.
func (r *Recorder) Frame() []Circle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Circle(nil), r.frame...)
}

// Frames counts presented frames.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Size returns the dimensions passed to the last Clear.
func (r *Recorder) Size() (float32, float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}
