package observability

import (
	"net/http"
	"net/http/pprof"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// RegisterPprof mounts the runtime profiling handlers under /debug/pprof/.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

// StartStatsview serves the runtime chart viewer on addr and returns its
// stop function. An empty addr starts nothing.
func StartStatsview(addr string) func() {
	if addr == "" {
		return func() {}
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()
	return mgr.Stop
}
