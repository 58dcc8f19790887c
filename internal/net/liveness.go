package net

import (
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"paint-bots/client/internal/telemetry"
	"paint-bots/client/logging"
	loggingNetwork "paint-bots/client/logging/network"
)

const (
	// LivenessReply is written back for any probe message.
	LivenessReply = "PONG"
	// LivenessTimeout bounds the wait for the probe message and the reply write.
	LivenessTimeout = 5 * time.Second
)

// livenessHandler accepts one message per connection, answers it and closes.
// No game traffic flows over /con.
type livenessHandler struct {
	upgrader websocket.Upgrader
	logger   telemetry.Logger
	pub      logging.Publisher
}

func (h *livenessHandler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[con] upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	actor := logging.EntityRef{ID: uuid.NewString(), Kind: logging.EntityKindConnection}
	payload := loggingNetwork.LivenessPayload{Remote: r.RemoteAddr}
	ctx := r.Context()

	conn.SetReadDeadline(time.Now().Add(LivenessTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		payload.Error = err.Error()
		loggingNetwork.LivenessFailed(ctx, h.pub, actor, payload, nil)
		return
	}
	payload.Request = string(data)

	conn.SetWriteDeadline(time.Now().Add(LivenessTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(LivenessReply)); err != nil {
		payload.Error = err.Error()
		loggingNetwork.LivenessFailed(ctx, h.pub, actor, payload, nil)
		return
	}
	payload.Response = LivenessReply
	loggingNetwork.LivenessProbe(ctx, h.pub, actor, payload, nil)

	closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(time.Second))
}
