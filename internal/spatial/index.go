// Package spatial buckets bot positions so neighbour queries do not have to
// scan the whole population. The grid is the reference implementation; the
// quadtree adapts to clustered maps and can be swapped in through New without
// touching callers.
package spatial

import (
	"fmt"
	"strings"
)

// Index is the neighbour-query surface used by the simulation step. All
// coordinates are map units; ids are bot ids.
type Index interface {
	Insert(id uint32, x, y float32)
	// Remove fails with a corrupted-state error when id is not bucketed at (x, y).
	Remove(id uint32, x, y float32) error
	// Move is a no-op when both positions share a bucket.
	Move(id uint32, oldX, oldY, newX, newY float32) error
	// QueryBox appends the ids of every bucket overlapping the box to dst. Each
	// bucket contributes at most the configured scan cap.
	QueryBox(minX, minY, maxX, maxY float32, dst []uint32) []uint32
	Len() int
	Reset()
}

// Kind selects an Index implementation.
type Kind string

const (
	KindGrid     Kind = "grid"
	KindQuadtree Kind = "quadtree"
)

const (
	// DefaultDivisionsLog2 splits each map axis into 2^5 cells.
	DefaultDivisionsLog2 = 5
	// MaxDivisionsLog2 bounds grid allocation.
	MaxDivisionsLog2 = 12
	// DefaultScanCap bounds the ids read from one bucket per query. Under heavy
	// clustering some contacts are not seen.
	DefaultScanCap = 32
	// DefaultSplitThreshold is the leaf occupancy that triggers a quadtree split.
	DefaultSplitThreshold = 16
	// DefaultMinRegion is the smallest quadtree node side produced by a split.
	DefaultMinRegion = 8
)

// Options configures New.
type Options struct {
	Width          float32
	Height         float32
	DivisionsLog2  uint
	ScanCap        int
	SplitThreshold int
	MinRegion      float32
}

// ParseKind normalises a configured index name.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindGrid:
		return KindGrid, nil
	case KindQuadtree:
		return KindQuadtree, nil
	default:
		return "", fmt.Errorf("unknown spatial index %q", raw)
	}
}

// New constructs the Index implementation named by kind.
func New(kind Kind, opts Options) (Index, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("spatial index requires positive map size, got %vx%v", opts.Width, opts.Height)
	}
	switch kind {
	case KindGrid, "":
		if opts.DivisionsLog2 > MaxDivisionsLog2 {
			return nil, fmt.Errorf("grid divisions 2^%d exceed limit 2^%d", opts.DivisionsLog2, MaxDivisionsLog2)
		}
		return NewGrid(opts.Width, opts.Height, opts.DivisionsLog2, opts.ScanCap), nil
	case KindQuadtree:
		return NewQuadtree(opts.Width, opts.Height, opts.SplitThreshold, opts.MinRegion, opts.ScanCap), nil
	default:
		return nil, fmt.Errorf("unknown spatial index %q", kind)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
