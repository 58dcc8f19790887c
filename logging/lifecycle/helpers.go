package lifecycle

import (
	"context"

	"paint-bots/client/logging"
)

const (
	// EventContextInitialized is emitted when Init installs a fresh arena.
	EventContextInitialized logging.EventType = "lifecycle.context_initialized"
	// EventContextReset is emitted when an initialized context is replaced.
	EventContextReset logging.EventType = "lifecycle.context_reset"
)

// ContextInitializedPayload captures the arena parameters.
type ContextInitializedPayload struct {
	MapWidth        uint32 `json:"mapWidth"`
	MapHeight       uint32 `json:"mapHeight"`
	Bots            int    `json:"bots"`
	Teams           uint16 `json:"teams"`
	Seed            uint64 `json:"seed"`
	TicksPerNetstep uint32 `json:"ticksPerNetstep"`
	TickDurationMS  uint32 `json:"tickDurationMs"`
	SpatialIndex    string `json:"spatialIndex"`
}

// ContextResetPayload records what the previous context had reached.
type ContextResetPayload struct {
	PreviousTick  uint64 `json:"previousTick"`
	PreviousPhase string `json:"previousPhase"`
}

// ContextInitialized publishes an info event after Init succeeds.
func ContextInitialized(ctx context.Context, pub logging.Publisher, payload ContextInitializedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventContextInitialized,
		Actor:    logging.EntityRef{Kind: logging.EntityKindContext},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}

// ContextReset publishes an info event when Init replaces a live context.
func ContextReset(ctx context.Context, pub logging.Publisher, tick uint64, payload ContextResetPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventContextReset,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindContext},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
