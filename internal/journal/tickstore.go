package journal

import (
	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/sim"
)

const (
	MetricRetainedTicks = "journal_retained_ticks"
	MetricPrunedTicks   = "journal_pruned_ticks_total"
)

type telemetryMetrics interface {
	Add(string, uint64)
	Store(string, uint64)
}

// TickStore keeps the contiguous run of snapshots [oldest, current]. Entry i
// holds tick oldest+i. It is not safe for concurrent use.
type TickStore struct {
	ticks   []*sim.GameTick
	oldest  uint64
	metrics telemetryMetrics
}

// NewTickStore returns an empty store. metrics may be nil.
func NewTickStore(metrics telemetryMetrics) *TickStore {
	return &TickStore{ticks: make([]*sim.GameTick, 0, 64), metrics: metrics}
}

// Len reports the number of retained snapshots.
func (s *TickStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ticks)
}

// Window reports the oldest and current retained tick numbers. ok is false
// while the store is empty.
func (s *TickStore) Window() (oldest, current uint64, ok bool) {
	if s == nil || len(s.ticks) == 0 {
		return 0, 0, false
	}
	return s.oldest, s.oldest + uint64(len(s.ticks)) - 1, true
}

// Current returns the newest snapshot.
func (s *TickStore) Current() (*sim.GameTick, error) {
	if s == nil || len(s.ticks) == 0 {
		return nil, fault.Misusef("journal.current", "tick store is empty")
	}
	return s.entry(s.oldest+uint64(len(s.ticks))-1, "journal.current")
}

// Get returns the snapshot for tick. Ticks outside the retained window are a
// caller error; a hole inside the window means the store is corrupted.
func (s *TickStore) Get(tick uint64) (*sim.GameTick, error) {
	oldest, current, ok := s.Window()
	if !ok {
		return nil, fault.Misusef("journal.get", "tick %d requested from empty store", tick)
	}
	if tick < oldest || tick > current {
		return nil, fault.Misusef("journal.get", "tick %d outside retained window [%d,%d]", tick, oldest, current)
	}
	return s.entry(tick, "journal.get")
}

func (s *TickStore) entry(tick uint64, op string) (*sim.GameTick, error) {
	snapshot := s.ticks[tick-s.oldest]
	if snapshot == nil || snapshot.Tick != tick {
		return nil, fault.Corruptedf(op, "no snapshot stored for tick %d", tick)
	}
	return snapshot, nil
}

// Append stores snapshot as the newest entry. The first append fixes the
// window start; later ones must continue the sequence exactly.
func (s *TickStore) Append(snapshot *sim.GameTick) error {
	if s == nil {
		return fault.Misusef("journal.append", "nil tick store")
	}
	if snapshot == nil {
		return fault.Corruptedf("journal.append", "nil snapshot")
	}
	if len(s.ticks) == 0 {
		s.oldest = snapshot.Tick
	} else if expected := s.oldest + uint64(len(s.ticks)); snapshot.Tick != expected {
		return fault.Corruptedf("journal.append", "expected tick %d, got %d", expected, snapshot.Tick)
	}
	s.ticks = append(s.ticks, snapshot)
	s.storeRetained()
	return nil
}

// Prune drops every snapshot below floor and reports how many were removed.
// The current snapshot is never removed.
func (s *TickStore) Prune(floor uint64) (int, error) {
	oldest, current, ok := s.Window()
	if !ok || floor <= oldest {
		return 0, nil
	}
	if floor > current {
		return 0, fault.Misusef("journal.prune", "floor %d above current tick %d", floor, current)
	}
	removed := int(floor - oldest)
	for i := 0; i < removed; i++ {
		s.ticks[i] = nil
	}
	remaining := copy(s.ticks, s.ticks[removed:])
	for i := remaining; i < len(s.ticks); i++ {
		s.ticks[i] = nil
	}
	s.ticks = s.ticks[:remaining]
	s.oldest = floor
	if s.metrics != nil {
		s.metrics.Add(MetricPrunedTicks, uint64(removed))
	}
	s.storeRetained()
	return removed, nil
}

// Reset empties the store.
func (s *TickStore) Reset() {
	if s == nil {
		return
	}
	for i := range s.ticks {
		s.ticks[i] = nil
	}
	s.ticks = s.ticks[:0]
	s.oldest = 0
	s.storeRetained()
}

func (s *TickStore) storeRetained() {
	if s.metrics == nil {
		return
	}
	s.metrics.Store(MetricRetainedTicks, uint64(len(s.ticks)))
}
