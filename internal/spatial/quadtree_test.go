package spatial

import (
	"reflect"
	"testing"

	"paint-bots/client/internal/fault"
)

func TestQuadtreeSplitsAndMerges(t *testing.T) {
	tree := NewQuadtree(256, 256, 4, 16, 0)
	for id := uint32(1); id <= 5; id++ {
		tree.Insert(id, float32(id)*10, float32(id)*10)
	}
	if tree.Leaves() <= 1 {
		t.Fatalf("expected root to split after exceeding threshold, leaves=%d", tree.Leaves())
	}
	if tree.Len() != 5 {
		t.Fatalf("expected 5 ids, got %d", tree.Len())
	}

	for id := uint32(1); id <= 4; id++ {
		if err := tree.Remove(id, float32(id)*10, float32(id)*10); err != nil {
			t.Fatalf("unexpected remove error for %d: %v", id, err)
		}
	}
	if tree.Leaves() != 1 {
		t.Fatalf("expected sparse tree to merge back into one leaf, leaves=%d", tree.Leaves())
	}
	if got := tree.QueryBox(0, 0, 256, 256, nil); !reflect.DeepEqual(got, []uint32{5}) {
		t.Fatalf("expected only id 5 to remain, got %v", got)
	}
}

func TestQuadtreeRespectsMinRegion(t *testing.T) {
	tree := NewQuadtree(32, 32, 1, 16, 0)
	for id := uint32(1); id <= 10; id++ {
		tree.Insert(id, 1, 1)
	}
	if tree.Leaves() != 4 {
		t.Fatalf("expected a single split down to 16-unit leaves, got %d leaves", tree.Leaves())
	}
}

func TestQuadtreeMoveAndRemoveMissing(t *testing.T) {
	tree := NewQuadtree(100, 100, 2, 4, 0)
	tree.Insert(1, 10, 10)
	tree.Insert(2, 80, 80)
	tree.Insert(3, 85, 85)

	if err := tree.Move(1, 10, 10, 90, 90); err != nil {
		t.Fatalf("unexpected move error: %v", err)
	}
	got := tree.QueryBox(0, 0, 20, 20, nil)
	for _, id := range got {
		if id == 1 {
			t.Fatalf("expected id 1 to leave the lower-left region, got %v", got)
		}
	}
	if err := tree.Remove(1, 10, 10); !fault.IsCorrupted(err) {
		t.Fatalf("expected corrupted error for stale position, got %v", err)
	}
	if err := tree.Remove(1, 90, 90); err != nil {
		t.Fatalf("expected removal at new position to succeed: %v", err)
	}
}

func TestQuadtreeQueryCapsLeaves(t *testing.T) {
	tree := NewQuadtree(100, 100, 100, 4, 3)
	for id := uint32(1); id <= 6; id++ {
		tree.Insert(id, 50, 50)
	}
	if got := tree.QueryBox(40, 40, 60, 60, nil); len(got) != 3 {
		t.Fatalf("expected leaf scan capped at 3, got %v", got)
	}
}
