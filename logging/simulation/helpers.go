package simulation

import (
	"context"

	"paint-bots/client/logging"
)

const (
	// EventTickBudgetOverrun is emitted when a tick takes longer than the tick duration.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventSessionFaulted is emitted when a step or frame reports corrupted state.
	EventSessionFaulted logging.EventType = "simulation.session_faulted"
	// EventNetstep is emitted whenever the current tick crosses a netstep boundary.
	EventNetstep logging.EventType = "simulation.netstep"
	// EventDisplayRetuned is emitted after the display controller gain or target lag changes.
	EventDisplayRetuned logging.EventType = "simulation.display_retuned"
	// EventResynced is emitted after a snapshot replaces the tick history.
	EventResynced logging.EventType = "simulation.resynced"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

// TickBudgetOverrun publishes a warning when a tick exceeds its budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	publish(ctx, pub, EventTickBudgetOverrun, logging.SeverityWarn, tick, payload, extra)
}

// SessionFaultedPayload describes the failed operation.
type SessionFaultedPayload struct {
	Op    string `json:"op"`
	Error string `json:"error"`
}

// SessionFaulted publishes an error when the context stops accepting ticks.
func SessionFaulted(ctx context.Context, pub logging.Publisher, tick uint64, payload SessionFaultedPayload, extra map[string]any) {
	publish(ctx, pub, EventSessionFaulted, logging.SeverityError, tick, payload, extra)
}

// NetstepPayload identifies the boundary that was crossed.
type NetstepPayload struct {
	Netstep         uint64 `json:"netstep"`
	TicksPerNetstep uint32 `json:"ticksPerNetstep"`
}

// Netstep publishes a debug event at each netstep boundary.
func Netstep(ctx context.Context, pub logging.Publisher, tick uint64, payload NetstepPayload, extra map[string]any) {
	publish(ctx, pub, EventNetstep, logging.SeverityDebug, tick, payload, extra)
}

// DisplayRetunedPayload records the new controller tuning.
type DisplayRetunedPayload struct {
	Gain      float64 `json:"gain"`
	TargetLag float64 `json:"targetLag"`
}

// DisplayRetuned publishes an info event after reconfiguration.
func DisplayRetuned(ctx context.Context, pub logging.Publisher, tick uint64, payload DisplayRetunedPayload, extra map[string]any) {
	publish(ctx, pub, EventDisplayRetuned, logging.SeverityInfo, tick, payload, extra)
}

// ResyncedPayload describes the snapshot that was installed.
type ResyncedPayload struct {
	Bots     int    `json:"bots"`
	Checksum uint64 `json:"checksum"`
	Faulted  bool   `json:"faulted"`
}

// Resynced publishes an info event after a successful resync.
func Resynced(ctx context.Context, pub logging.Publisher, tick uint64, payload ResyncedPayload, extra map[string]any) {
	publish(ctx, pub, EventResynced, logging.SeverityInfo, tick, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, tick uint64, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindContext},
		Severity: severity,
		Category: logging.CategorySimulation,
		Payload:  payload,
		Extra:    extra,
	})
}
