package sim

import "fmt"

// Terrain values stored in the static map.
const (
	TerrainOpen byte = 0
	TerrainWall byte = 1
)

// Map is a row-major byte buffer the size of the arena. It backs both the
// static terrain and the per-team paint layers.
type Map struct {
	W     uint32
	H     uint32
	Bytes []byte
}

// Rect is an axis-aligned region of a Map in whole pixels.
type Rect struct {
	X uint32
	Y uint32
	W uint32
	H uint32
}

// NewMap allocates a zeroed w x h map.
func NewMap(w, h uint32) *Map {
	return &Map{W: w, H: h, Bytes: make([]byte, int(w)*int(h))}
}

func (m *Map) offset(x, y uint32) (int, bool) {
	if m == nil || x >= m.W || y >= m.H {
		return 0, false
	}
	return int(y)*int(m.W) + int(x), true
}

// At returns the byte at (x, y); out-of-range reads report false.
func (m *Map) At(x, y uint32) (byte, bool) {
	idx, ok := m.offset(x, y)
	if !ok {
		return 0, false
	}
	return m.Bytes[idx], true
}

// Set writes the byte at (x, y).
func (m *Map) Set(x, y uint32, value byte) error {
	idx, ok := m.offset(x, y)
	if !ok {
		return fmt.Errorf("(%d,%d) outside %dx%d map", x, y, m.W, m.H)
	}
	m.Bytes[idx] = value
	return nil
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	return &Map{W: m.W, H: m.H, Bytes: append([]byte(nil), m.Bytes...)}
}

// Contains reports whether r is non-empty and lies inside the map.
func (m *Map) Contains(r Rect) bool {
	if m == nil || r.W == 0 || r.H == 0 {
		return false
	}
	return uint64(r.X)+uint64(r.W) <= uint64(m.W) && uint64(r.Y)+uint64(r.H) <= uint64(m.H)
}

// CopyRect copies r from src into m. Both maps must share dimensions.
func (m *Map) CopyRect(src *Map, r Rect) error {
	if m == nil || src == nil {
		return fmt.Errorf("copy between nil maps")
	}
	if m.W != src.W || m.H != src.H {
		return fmt.Errorf("map size mismatch %dx%d vs %dx%d", m.W, m.H, src.W, src.H)
	}
	if !m.Contains(r) {
		return fmt.Errorf("rect %+v outside %dx%d map", r, m.W, m.H)
	}
	for row := r.Y; row < r.Y+r.H; row++ {
		start := int(row)*int(m.W) + int(r.X)
		end := start + int(r.W)
		copy(m.Bytes[start:end], src.Bytes[start:end])
	}
	return nil
}
