package game

// Phase is the lifecycle state of a Context.
type Phase int

const (
	// PhaseUninitialized rejects every operation except Init.
	PhaseUninitialized Phase = iota
	// PhaseReady accepts ticks and frames.
	PhaseReady
	// PhaseFaulted follows a corrupted-state error; only Init or Resync leave it.
	PhaseFaulted
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReady:
		return "ready"
	case PhaseFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}
