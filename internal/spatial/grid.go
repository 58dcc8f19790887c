package spatial

import (
	"github.com/chewxy/math32"

	"paint-bots/client/internal/fault"
)

// CellKey identifies a grid cell by column and row.
type CellKey struct {
	X int
	Y int
}

// Grid is a fixed 2^k x 2^k bucket array over the map. Cell size is derived
// once from the map dimensions and never changes.
type Grid struct {
	width    float32
	height   float32
	cols     int
	rows     int
	invCellW float32
	invCellH float32
	scanCap  int
	cells    [][]uint32
	count    int
}

// NewGrid builds a grid splitting each axis into 2^divisionsLog2 cells. A
// scanCap of zero or less disables the per-cell query cap.
func NewGrid(width, height float32, divisionsLog2 uint, scanCap int) *Grid {
	if divisionsLog2 > MaxDivisionsLog2 {
		divisionsLog2 = MaxDivisionsLog2
	}
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	divisions := 1 << divisionsLog2
	return &Grid{
		width:    width,
		height:   height,
		cols:     divisions,
		rows:     divisions,
		invCellW: float32(divisions) / width,
		invCellH: float32(divisions) / height,
		scanCap:  scanCap,
		cells:    make([][]uint32, divisions*divisions),
	}
}

// Dimensions reports the column and row count.
func (g *Grid) Dimensions() (cols, rows int) {
	if g == nil {
		return 0, 0
	}
	return g.cols, g.rows
}

// CellSize reports the width and height of one cell in map units.
func (g *Grid) CellSize() (float32, float32) {
	if g == nil {
		return 0, 0
	}
	return g.width / float32(g.cols), g.height / float32(g.rows)
}

// Cell returns the cell containing (x, y), clamped to the grid.
func (g *Grid) Cell(x, y float32) CellKey {
	return CellKey{
		X: clampInt(int(math32.Floor(x*g.invCellW)), 0, g.cols-1),
		Y: clampInt(int(math32.Floor(y*g.invCellH)), 0, g.rows-1),
	}
}

func (g *Grid) slot(key CellKey) int {
	return key.Y*g.cols + key.X
}

// Insert adds id to the cell containing (x, y).
func (g *Grid) Insert(id uint32, x, y float32) {
	if g == nil {
		return
	}
	idx := g.slot(g.Cell(x, y))
	g.cells[idx] = append(g.cells[idx], id)
	g.count++
}

// Remove deletes id from the cell containing (x, y).
func (g *Grid) Remove(id uint32, x, y float32) error {
	if g == nil {
		return fault.Corruptedf("spatial.remove", "grid not initialised")
	}
	key := g.Cell(x, y)
	idx := g.slot(key)
	bucket := g.cells[idx]
	for i := range bucket {
		if bucket[i] != id {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		g.cells[idx] = bucket[:last]
		g.count--
		return nil
	}
	return fault.Corruptedf("spatial.remove", "bot %d not found in cell (%d,%d)", id, key.X, key.Y)
}

// Move rebuckets id when the move crosses a cell boundary.
func (g *Grid) Move(id uint32, oldX, oldY, newX, newY float32) error {
	if g == nil {
		return fault.Corruptedf("spatial.move", "grid not initialised")
	}
	if g.Cell(oldX, oldY) == g.Cell(newX, newY) {
		return nil
	}
	if err := g.Remove(id, oldX, oldY); err != nil {
		return err
	}
	g.Insert(id, newX, newY)
	return nil
}

// QueryBox collects ids from every cell the box overlaps.
func (g *Grid) QueryBox(minX, minY, maxX, maxY float32, dst []uint32) []uint32 {
	if g == nil {
		return dst
	}
	lo := g.Cell(minX, minY)
	hi := g.Cell(maxX, maxY)
	for row := lo.Y; row <= hi.Y; row++ {
		offset := row * g.cols
		for col := lo.X; col <= hi.X; col++ {
			bucket := g.cells[offset+col]
			if g.scanCap > 0 && len(bucket) > g.scanCap {
				bucket = bucket[:g.scanCap]
			}
			dst = append(dst, bucket...)
		}
	}
	return dst
}

// Members returns a copy of the ids bucketed in key.
func (g *Grid) Members(key CellKey) []uint32 {
	if g == nil || key.X < 0 || key.X >= g.cols || key.Y < 0 || key.Y >= g.rows {
		return nil
	}
	bucket := g.cells[g.slot(key)]
	if len(bucket) == 0 {
		return nil
	}
	return append([]uint32(nil), bucket...)
}

// Occupied returns a copy of every non-empty cell.
func (g *Grid) Occupied() map[CellKey][]uint32 {
	if g == nil {
		return nil
	}
	occupied := make(map[CellKey][]uint32)
	for idx, bucket := range g.cells {
		if len(bucket) == 0 {
			continue
		}
		key := CellKey{X: idx % g.cols, Y: idx / g.cols}
		occupied[key] = append([]uint32(nil), bucket...)
	}
	return occupied
}

// Len reports the number of bucketed ids.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return g.count
}

// Reset empties every cell while keeping allocated capacity.
func (g *Grid) Reset() {
	if g == nil {
		return
	}
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

var _ Index = (*Grid)(nil)
