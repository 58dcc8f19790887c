package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"paint-bots/client/internal/game"
	"paint-bots/client/internal/journal"
)

// DiagnosticsSource reads a consistent arena summary.
type DiagnosticsSource func() game.Diagnostics

// Collector exports arena metrics to Prometheus. It also satisfies
// telemetry.Metrics so components can report by key without importing
// Prometheus.
type Collector struct {
	counters     map[string]prometheus.Counter
	gauges       map[string]prometheus.Gauge
	TickDuration prometheus.Histogram
}

// NewCollector registers the arena metrics on reg. source may be nil, in
// which case the display gauges are not registered.
func NewCollector(reg prometheus.Registerer, source DiagnosticsSource) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		counters: make(map[string]prometheus.Counter),
		gauges:   make(map[string]prometheus.Gauge),
	}

	counters := map[string]string{
		game.MetricTicks:          "Simulation ticks completed.",
		game.MetricFrames:         "Display frames rendered.",
		game.MetricFaults:         "Sessions faulted by corrupted state.",
		game.MetricPairChecks:     "Collision pair checks performed.",
		game.MetricContacts:       "Collision contacts resolved.",
		game.MetricEdgeBounces:    "Map edge bounces.",
		journal.MetricPrunedTicks: "Snapshots pruned from the tick history.",
	}
	for key, help := range counters {
		counter, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{Name: key, Help: help}), key)
		if err != nil {
			return nil, err
		}
		c.counters[key] = counter
	}

	gauges := map[string]string{
		game.MetricBots:             "Bots in the newest snapshot.",
		journal.MetricRetainedTicks: "Snapshots retained in the tick history.",
	}
	for key, help := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: key, Help: help}), key)
		if err != nil {
			return nil, err
		}
		c.gauges[key] = gauge
	}

	histogram, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Wall time spent computing one tick.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}), "arena_tick_duration_seconds")
	if err != nil {
		return nil, err
	}
	c.TickDuration = histogram

	if source != nil {
		funcs := map[string]struct {
			help string
			read func(game.Diagnostics) float64
		}{
			"arena_display_cursor":    {"Fractional tick being displayed.", func(d game.Diagnostics) float64 { return d.Cursor }},
			"arena_display_lag_ticks": {"Ticks between the newest tick and the display cursor.", func(d game.Diagnostics) float64 { return d.Lag }},
			"arena_display_ratio":     {"Display advance ratio.", func(d game.Diagnostics) float64 { return d.Ratio }},
			"arena_current_tick":      {"Newest simulated tick.", func(d game.Diagnostics) float64 { return float64(d.CurrentTick) }},
		}
		for name, def := range funcs {
			read := def.read
			gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: def.help}, func() float64 { return read(source()) })
			if err := reg.Register(gauge); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					return nil, fmt.Errorf("register %s: %w", name, err)
				}
			}
		}
	}
	return c, nil
}

// Add increments the counter registered under key; unknown keys are ignored.
func (c *Collector) Add(key string, delta uint64) {
	if c == nil {
		return
	}
	if counter, ok := c.counters[key]; ok {
		counter.Add(float64(delta))
	}
}

// Store sets the gauge registered under key; unknown keys are ignored.
func (c *Collector) Store(key string, value uint64) {
	if c == nil {
		return
	}
	if gauge, ok := c.gauges[key]; ok {
		gauge.Set(float64(value))
	}
}

// ObserveTick records one tick's wall time.
func (c *Collector) ObserveTick(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, histogram prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(histogram); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return histogram, nil
}
