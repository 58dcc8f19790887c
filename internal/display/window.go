package display

// LagWindow is a fixed-capacity ring of recent lag-error samples with a
// running sum. Pushing past capacity evicts the oldest sample.
type LagWindow struct {
	data  []float64
	head  int
	count int
	sum   float64
}

// NewLagWindow constructs a window holding at most capacity samples.
func NewLagWindow(capacity int) *LagWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &LagWindow{data: make([]float64, capacity)}
}

// Capacity reports the maximum number of samples kept.
func (w *LagWindow) Capacity() int {
	if w == nil {
		return 0
	}
	return len(w.data)
}

// Len reports the number of samples currently held.
func (w *LagWindow) Len() int {
	if w == nil {
		return 0
	}
	return w.count
}

// Push records a sample and returns the updated mean.
func (w *LagWindow) Push(sample float64) float64 {
	if w == nil {
		return 0
	}
	if w.count == len(w.data) {
		w.sum -= w.data[w.head]
		w.data[w.head] = sample
		w.head = (w.head + 1) % len(w.data)
	} else {
		w.data[(w.head+w.count)%len(w.data)] = sample
		w.count++
	}
	w.sum += sample
	return w.Mean()
}

// Mean returns sum / len, or zero for an empty window.
func (w *LagWindow) Mean() float64 {
	if w == nil || w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

// Samples returns the samples oldest first.
func (w *LagWindow) Samples() []float64 {
	if w == nil || w.count == 0 {
		return nil
	}
	samples := make([]float64, w.count)
	for i := 0; i < w.count; i++ {
		samples[i] = w.data[(w.head+i)%len(w.data)]
	}
	return samples
}

// Reset clears every sample.
func (w *LagWindow) Reset() {
	if w == nil {
		return
	}
	w.head = 0
	w.count = 0
	w.sum = 0
}
