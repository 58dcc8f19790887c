package spatial

import (
	"paint-bots/client/internal/fault"
)

type quadEntry struct {
	id uint32
	x  float32
	y  float32
}

type quadNode struct {
	minX, minY float32
	maxX, maxY float32
	entries    []quadEntry
	children   *[4]quadNode
}

// Quadtree recursively splits crowded leaves until a leaf side would fall
// below the minimum region. Leaves act as the buckets of the Index contract.
type Quadtree struct {
	root           quadNode
	splitThreshold int
	minRegion      float32
	scanCap        int
	count          int
}

// NewQuadtree builds an empty tree covering [0,width) x [0,height).
func NewQuadtree(width, height float32, splitThreshold int, minRegion float32, scanCap int) *Quadtree {
	if splitThreshold <= 0 {
		splitThreshold = DefaultSplitThreshold
	}
	if minRegion <= 0 {
		minRegion = DefaultMinRegion
	}
	return &Quadtree{
		root:           quadNode{maxX: width, maxY: height},
		splitThreshold: splitThreshold,
		minRegion:      minRegion,
		scanCap:        scanCap,
	}
}

func (n *quadNode) leaf() bool {
	return n.children == nil
}

func (n *quadNode) childFor(x, y float32) int {
	idx := 0
	if x >= (n.minX+n.maxX)/2 {
		idx |= 1
	}
	if y >= (n.minY+n.maxY)/2 {
		idx |= 2
	}
	return idx
}

func (n *quadNode) overlaps(minX, minY, maxX, maxY float32) bool {
	return minX < n.maxX && maxX >= n.minX && minY < n.maxY && maxY >= n.minY
}

func (q *Quadtree) leafFor(x, y float32) *quadNode {
	node := &q.root
	for !node.leaf() {
		node = &node.children[node.childFor(x, y)]
	}
	return node
}

// Insert adds id at (x, y), splitting the receiving leaf when it overflows.
func (q *Quadtree) Insert(id uint32, x, y float32) {
	if q == nil {
		return
	}
	leaf := q.leafFor(x, y)
	leaf.entries = append(leaf.entries, quadEntry{id: id, x: x, y: y})
	q.count++
	q.maybeSplit(leaf)
}

func (q *Quadtree) maybeSplit(node *quadNode) {
	if len(node.entries) <= q.splitThreshold {
		return
	}
	halfW := (node.maxX - node.minX) / 2
	halfH := (node.maxY - node.minY) / 2
	if halfW < q.minRegion || halfH < q.minRegion {
		return
	}
	midX := node.minX + halfW
	midY := node.minY + halfH
	node.children = &[4]quadNode{
		{minX: node.minX, minY: node.minY, maxX: midX, maxY: midY},
		{minX: midX, minY: node.minY, maxX: node.maxX, maxY: midY},
		{minX: node.minX, minY: midY, maxX: midX, maxY: node.maxY},
		{minX: midX, minY: midY, maxX: node.maxX, maxY: node.maxY},
	}
	for _, entry := range node.entries {
		child := &node.children[node.childFor(entry.x, entry.y)]
		child.entries = append(child.entries, entry)
	}
	node.entries = nil
	for i := range node.children {
		q.maybeSplit(&node.children[i])
	}
}

// Remove deletes id from the leaf containing (x, y).
func (q *Quadtree) Remove(id uint32, x, y float32) error {
	if q == nil {
		return fault.Corruptedf("spatial.remove", "quadtree not initialised")
	}
	if !q.removeFrom(&q.root, id, x, y) {
		return fault.Corruptedf("spatial.remove", "bot %d not found in leaf containing (%v,%v)", id, x, y)
	}
	q.count--
	return nil
}

func (q *Quadtree) removeFrom(node *quadNode, id uint32, x, y float32) bool {
	if node.leaf() {
		for i := range node.entries {
			if node.entries[i].id != id {
				continue
			}
			node.entries = append(node.entries[:i], node.entries[i+1:]...)
			return true
		}
		return false
	}
	if !q.removeFrom(&node.children[node.childFor(x, y)], id, x, y) {
		return false
	}
	q.maybeMerge(node)
	return true
}

func (q *Quadtree) maybeMerge(node *quadNode) {
	total := 0
	for i := range node.children {
		child := &node.children[i]
		if !child.leaf() {
			return
		}
		total += len(child.entries)
	}
	if total > q.splitThreshold/2 {
		return
	}
	merged := make([]quadEntry, 0, total)
	for i := range node.children {
		merged = append(merged, node.children[i].entries...)
	}
	node.children = nil
	node.entries = merged
}

// Move updates the stored position in place when the leaf is unchanged,
// otherwise it removes and reinserts id.
func (q *Quadtree) Move(id uint32, oldX, oldY, newX, newY float32) error {
	if q == nil {
		return fault.Corruptedf("spatial.move", "quadtree not initialised")
	}
	leaf := q.leafFor(oldX, oldY)
	if leaf == q.leafFor(newX, newY) {
		for i := range leaf.entries {
			if leaf.entries[i].id == id {
				leaf.entries[i].x = newX
				leaf.entries[i].y = newY
				return nil
			}
		}
		return fault.Corruptedf("spatial.move", "bot %d not found in leaf containing (%v,%v)", id, oldX, oldY)
	}
	if err := q.Remove(id, oldX, oldY); err != nil {
		return err
	}
	q.Insert(id, newX, newY)
	return nil
}

// QueryBox collects ids from every leaf overlapping the box.
func (q *Quadtree) QueryBox(minX, minY, maxX, maxY float32, dst []uint32) []uint32 {
	if q == nil {
		return dst
	}
	return q.query(&q.root, minX, minY, maxX, maxY, dst)
}

func (q *Quadtree) query(node *quadNode, minX, minY, maxX, maxY float32, dst []uint32) []uint32 {
	if node != &q.root && !node.overlaps(minX, minY, maxX, maxY) {
		return dst
	}
	if node.leaf() {
		entries := node.entries
		if q.scanCap > 0 && len(entries) > q.scanCap {
			entries = entries[:q.scanCap]
		}
		for _, entry := range entries {
			dst = append(dst, entry.id)
		}
		return dst
	}
	for i := range node.children {
		dst = q.query(&node.children[i], minX, minY, maxX, maxY, dst)
	}
	return dst
}

// Leaves reports the number of leaf nodes.
func (q *Quadtree) Leaves() int {
	if q == nil {
		return 0
	}
	return countLeaves(&q.root)
}

func countLeaves(node *quadNode) int {
	if node.leaf() {
		return 1
	}
	total := 0
	for i := range node.children {
		total += countLeaves(&node.children[i])
	}
	return total
}

// Len reports the number of stored ids.
func (q *Quadtree) Len() int {
	if q == nil {
		return 0
	}
	return q.count
}

// Reset drops every node below the root.
func (q *Quadtree) Reset() {
	if q == nil {
		return
	}
	q.root = quadNode{maxX: q.root.maxX, maxY: q.root.maxY}
	q.count = 0
}

var _ Index = (*Quadtree)(nil)
