package net

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"paint-bots/client/internal/driver"
	"paint-bots/client/internal/fault"
	"paint-bots/client/internal/game"
	"paint-bots/client/internal/observability"
	"paint-bots/client/internal/telemetry"
	"paint-bots/client/logging"
)

// MaxSnapshotBytes bounds the body accepted by POST /snapshot.
const MaxSnapshotBytes = 8 << 20

type HTTPHandlerConfig struct {
	SiteDir     string
	EnablePprof bool
	// Metrics serves /metrics when set.
	Metrics nethttp.Handler
	// Telemetry adds the in-process counters to /diagnostics when set.
	Telemetry func() map[string]uint64
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Clock     logging.Clock
}

type displayRequest struct {
	Gain      *float64 `json:"gain"`
	TargetLag *float64 `json:"targetLag"`
}

func NewHTTPHandler(session *driver.Session, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = logging.NopPublisher()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string `json:"status"`
			ServerTime int64  `json:"serverTime"`
			Arena      any    `json:"arena"`
			Telemetry  any    `json:"telemetry,omitempty"`
		}{
			Status:     "ok",
			ServerTime: clock.Now().UnixMilli(),
			Arena:      session.Diagnostics(),
		}
		if cfg.Telemetry != nil {
			payload.Telemetry = cfg.Telemetry()
		}

		data, err := json.Marshal(payload)
		if err != nil {
			httpError(w, "failed to encode", nethttp.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("/snapshot", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodGet:
			var data []byte
			err := session.Do(func(arena driver.Arena) error {
				var exportErr error
				data, exportErr = arena.ExportSnapshot()
				return exportErr
			})
			if err != nil {
				httpError(w, err.Error(), statusFor(err))
				return
			}
			w.Header().Set("Content-Type", "application/msgpack")
			w.Write(data)
		case nethttp.MethodPost:
			defer r.Body.Close()
			data, err := io.ReadAll(nethttp.MaxBytesReader(w, r.Body, MaxSnapshotBytes))
			if err != nil {
				httpError(w, "invalid payload", nethttp.StatusBadRequest)
				return
			}
			err = session.Do(func(arena driver.Arena) error {
				return arena.Resync(data)
			})
			if err != nil {
				logger.Printf("[snapshot] resync rejected: %v", err)
				httpError(w, err.Error(), statusFor(err))
				return
			}
			writeJSON(w, session.Diagnostics())
		default:
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/display", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()

		var req displayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			httpError(w, "invalid payload", nethttp.StatusBadRequest)
			return
		}

		// Unset fields keep their current value; read and write under one lock.
		var diag game.Diagnostics
		err := session.Do(func(arena driver.Arena) error {
			current := arena.Diagnostics()
			gain, targetLag := current.Gain, current.TargetLag
			if req.Gain != nil {
				gain = *req.Gain
			}
			if req.TargetLag != nil {
				targetLag = *req.TargetLag
			}
			if err := arena.ReconfigureDisplay(gain, targetLag); err != nil {
				return err
			}
			diag = arena.Diagnostics()
			return nil
		})
		if err != nil {
			httpError(w, err.Error(), statusFor(err))
			return
		}
		writeJSON(w, diag)
	})

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}
	liveness := &livenessHandler{upgrader: upgrader, logger: logger, pub: pub}
	mux.Handle("/con", liveness)

	if cfg.EnablePprof {
		observability.RegisterPprof(mux)
	}

	if cfg.SiteDir != "" {
		fs := nethttp.FileServer(nethttp.Dir(cfg.SiteDir))
		mux.Handle("/", fs)
	}

	return mux
}

func statusFor(err error) int {
	if fault.IsMisuse(err) {
		return nethttp.StatusBadRequest
	}
	return nethttp.StatusInternalServerError
}

func writeJSON(w nethttp.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, msg string, code int) {
	nethttp.Error(w, msg, code)
}
