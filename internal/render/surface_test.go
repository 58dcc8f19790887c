package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRecorderKeepsLastPresentedFrame(t *testing.T) {
	recorder := NewRecorder()
	recorder.Clear(64, 32)
	recorder.FillCircle(mgl32.Vec2{1, 2}, 3, 0)
	recorder.Present()

	recorder.Clear(64, 32)
	recorder.FillCircle(mgl32.Vec2{4, 5}, 3, 1)
	if got := recorder.Frame(); len(got) != 1 || got[0].Pos != (mgl32.Vec2{1, 2}) {
		t.Fatalf("expected unpresented calls hidden, got %+v", got)
	}
	recorder.Present()

	frame := recorder.Frame()
	if len(frame) != 1 || frame[0].Team != 1 {
		t.Fatalf("expected second frame, got %+v", frame)
	}
	if recorder.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", recorder.Frames())
	}
	if w, h := recorder.Size(); w != 64 || h != 32 {
		t.Fatalf("expected 64x32, got %vx%v", w, h)
	}
}
