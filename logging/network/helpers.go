package network

import (
	"context"

	"paint-bots/client/logging"
)

const (
	// EventLivenessProbe is emitted after a connection completes the ping exchange.
	EventLivenessProbe logging.EventType = "network.liveness_probe"
	// EventLivenessFailed is emitted when the exchange cannot be completed.
	EventLivenessFailed logging.EventType = "network.liveness_failed"
)

// LivenessPayload captures one probe exchange.
type LivenessPayload struct {
	Remote   string `json:"remote"`
	Request  string `json:"request,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LivenessProbe publishes a debug event for a successful probe.
func LivenessProbe(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload LivenessPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLivenessProbe,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}

// LivenessFailed publishes a warning for a broken probe.
func LivenessFailed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload LivenessPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLivenessFailed,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}
