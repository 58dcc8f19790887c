package spatial

import (
	"reflect"
	"sort"
	"testing"

	"paint-bots/client/internal/fault"
)

func sortedIDs(ids []uint32) []uint32 {
	out := append([]uint32(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestGridDimensionsArePowerOfTwoFractions(t *testing.T) {
	grid := NewGrid(1024, 512, 4, 0)
	cols, rows := grid.Dimensions()
	if cols != 16 || rows != 16 {
		t.Fatalf("expected 16x16 grid, got %dx%d", cols, rows)
	}
	w, h := grid.CellSize()
	if w != 64 || h != 32 {
		t.Fatalf("expected 64x32 cells, got %vx%v", w, h)
	}
	if key := grid.Cell(1023.9, 511.9); key != (CellKey{X: 15, Y: 15}) {
		t.Fatalf("expected far corner in cell (15,15), got %+v", key)
	}
	if key := grid.Cell(-5, 9000); key != (CellKey{X: 0, Y: 15}) {
		t.Fatalf("expected out-of-map coordinates to clamp, got %+v", key)
	}
}

func TestGridInsertRemove(t *testing.T) {
	grid := NewGrid(100, 100, 2, 0)
	grid.Insert(1, 10, 10)
	grid.Insert(2, 12, 14)
	grid.Insert(3, 90, 90)

	if grid.Len() != 3 {
		t.Fatalf("expected 3 ids, got %d", grid.Len())
	}
	if got := sortedIDs(grid.Members(CellKey{})); !reflect.DeepEqual(got, []uint32{1, 2}) {
		t.Fatalf("expected cell (0,0) to hold [1 2], got %v", got)
	}

	if err := grid.Remove(1, 10, 10); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if got := grid.Members(CellKey{}); !reflect.DeepEqual(got, []uint32{2}) {
		t.Fatalf("expected cell (0,0) to hold [2], got %v", got)
	}
}

func TestGridRemoveMissingIsCorrupted(t *testing.T) {
	grid := NewGrid(100, 100, 2, 0)
	grid.Insert(5, 10, 10)
	err := grid.Remove(5, 80, 80)
	if err == nil {
		t.Fatalf("expected error removing id from the wrong cell")
	}
	if !fault.IsCorrupted(err) {
		t.Fatalf("expected corrupted error, got %v", err)
	}
}

func TestGridMoveWithinCellLeavesOtherCellsUntouched(t *testing.T) {
	grid := NewGrid(128, 128, 3, 0)
	grid.Insert(1, 1, 1)
	grid.Insert(2, 40, 40)
	grid.Insert(3, 41, 42)
	grid.Insert(4, 100, 3)

	before := grid.Occupied()
	if err := grid.Move(1, 1, 1, 14, 15); err != nil {
		t.Fatalf("unexpected move error: %v", err)
	}
	after := grid.Occupied()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected cell-local move to leave buckets unchanged\nbefore=%v\nafter=%v", before, after)
	}
}

func TestGridMoveAcrossCellsLeavesNoStaleMembership(t *testing.T) {
	grid := NewGrid(128, 128, 3, 0)
	grid.Insert(1, 1, 1)
	if err := grid.Move(1, 1, 1, 70, 70); err != nil {
		t.Fatalf("unexpected move error: %v", err)
	}
	if members := grid.Members(CellKey{}); len(members) != 0 {
		t.Fatalf("expected old cell to be empty, got %v", members)
	}
	target := grid.Cell(70, 70)
	if members := grid.Members(target); !reflect.DeepEqual(members, []uint32{1}) {
		t.Fatalf("expected id in cell %+v, got %v", target, members)
	}
	if grid.Len() != 1 {
		t.Fatalf("expected one id after move, got %d", grid.Len())
	}
}

func TestGridQueryBoxClampsAndCaps(t *testing.T) {
	grid := NewGrid(64, 64, 2, 2)
	for id := uint32(1); id <= 5; id++ {
		grid.Insert(id, 2, 2)
	}
	grid.Insert(9, 60, 60)

	got := grid.QueryBox(-100, -100, 10, 10, nil)
	if len(got) != 2 {
		t.Fatalf("expected per-cell cap of 2 ids, got %v", got)
	}

	all := sortedIDs(grid.QueryBox(-1, -1, 1000, 1000, nil))
	if !reflect.DeepEqual(all, []uint32{1, 2, 9}) {
		t.Fatalf("expected capped scan over whole grid, got %v", all)
	}
}

func TestGridReset(t *testing.T) {
	grid := NewGrid(64, 64, 1, 0)
	grid.Insert(1, 1, 1)
	grid.Reset()
	if grid.Len() != 0 || len(grid.Occupied()) != 0 {
		t.Fatalf("expected empty grid after reset")
	}
}

func TestNewSelectsImplementation(t *testing.T) {
	idx, err := New(KindQuadtree, Options{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := idx.(*Quadtree); !ok {
		t.Fatalf("expected quadtree, got %T", idx)
	}
	if _, err := New(KindGrid, Options{Width: 10, Height: 10, DivisionsLog2: MaxDivisionsLog2 + 1}); err == nil {
		t.Fatalf("expected oversize grid to be rejected")
	}
	if _, err := ParseKind("hexgrid"); err == nil {
		t.Fatalf("expected unknown kind to be rejected")
	}
	if kind, err := ParseKind(" Grid "); err != nil || kind != KindGrid {
		t.Fatalf("expected grid kind, got %q (%v)", kind, err)
	}
}
