package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"paint-bots/client/internal/config"
	"paint-bots/client/internal/driver"
	"paint-bots/client/internal/game"
	servernet "paint-bots/client/internal/net"
	"paint-bots/client/internal/observability"
	"paint-bots/client/internal/render"
	"paint-bots/client/internal/telemetry"
	"paint-bots/client/logging"
	loggingSinks "paint-bots/client/logging/sinks"
)

const (
	shutdownTimeout = 5 * time.Second
	sentryFlush     = 2 * time.Second
)

// Deps override the ambient collaborators built by New. Nil fields get
// process defaults.
type Deps struct {
	Logger   *logrus.Logger
	Registry *prometheus.Registry
	Clock    logging.Clock
}

// App is a fully wired arena: event router, metrics, game context, driver
// session and HTTP handler.
type App struct {
	logger    *logrus.Logger
	router    *logging.Router
	counters  *logging.Metrics
	collector *observability.Collector
	arena     *game.Context
	session   *driver.Session
	handler   http.Handler
	obs       observability.Config
	sentry    bool
}

// New builds and initializes the arena described by cfg.
func New(cfg config.Config, deps Deps) (*App, error) {
	gameCfg, err := cfg.Game()
	if err != nil {
		return nil, fmt.Errorf("invalid arena config: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = telemetry.NewLogrus(cfg.Logging.Level)
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}
	telemetryLogger := telemetry.WrapLogrus(logger)

	logCfg := cfg.LoggingConfig()
	router := logging.NewRouter(clock, logCfg, logger, buildSinks(logCfg, logger))

	a := &App{logger: logger, router: router, counters: &logging.Metrics{}}

	collector, err := observability.NewCollector(registry, func() game.Diagnostics {
		return a.session.Diagnostics()
	})
	if err != nil {
		router.Close(context.Background())
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	a.collector = collector

	a.arena = game.New(game.Deps{
		Logger:    telemetryLogger,
		Publisher: router,
		Metrics:   telemetry.Tee(telemetry.WrapMetrics(a.counters), collector),
	})
	if err := a.arena.Init(render.Nop{}, gameCfg); err != nil {
		router.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize arena: %w", err)
	}

	if cfg.Observability.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Observability.SentryDSN,
			Environment: cfg.Observability.SentryEnvironment,
		})
		if err != nil {
			logger.WithError(err).Warn("sentry disabled")
		} else {
			a.sentry = true
		}
	}

	a.session = driver.New(a.arena, driver.Config{
		TickDuration: time.Duration(cfg.Arena.TickDurationMS) * time.Millisecond,
		FrameRate:    cfg.Display.FrameRate,
		MaxCatchUp:   time.Duration(cfg.Display.MaxCatchUpMS * float64(time.Millisecond)),
	}, driver.Deps{
		Clock:     clock,
		Logger:    telemetryLogger,
		Publisher: router,
	}, driver.Hooks{
		AfterTick: func(result driver.TickResult) {
			collector.ObserveTick(result.Duration)
		},
		OnFault: a.reportFault,
	})

	a.obs = observability.Config{
		EnablePprof:   cfg.Observability.EnablePprof,
		StatsviewAddr: cfg.Observability.StatsviewAddr,
	}
	a.handler = servernet.NewHTTPHandler(a.session, servernet.HTTPHandlerConfig{
		SiteDir:     cfg.Server.SiteDir,
		EnablePprof: a.obs.EnablePprof,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Telemetry:   a.counters.Snapshot,
		Logger:      telemetryLogger,
		Publisher:   router,
		Clock:       clock,
	})
	return a, nil
}

func buildSinks(cfg logging.Config, logger *logrus.Logger) []logging.NamedSink {
	var named []logging.NamedSink
	if cfg.HasSink(logging.SinkConsole) {
		named = append(named, logging.NamedSink{Name: logging.SinkConsole, Sink: loggingSinks.NewConsole(logger)})
	}
	if cfg.HasSink(logging.SinkJSON) {
		named = append(named, logging.NamedSink{Name: logging.SinkJSON, Sink: loggingSinks.NewRotatingJSON(cfg.JSON)})
	}
	if cfg.HasSink(logging.SinkMemory) {
		named = append(named, logging.NamedSink{Name: logging.SinkMemory, Sink: loggingSinks.NewMemory()})
	}
	return named
}

func (a *App) reportFault(err error) {
	a.logger.WithError(err).Error("arena faulted; waiting for resync")
	if !a.sentry {
		return
	}
	diag := a.session.Diagnostics()
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("phase", diag.Phase)
		scope.SetTag("tick", fmt.Sprint(diag.CurrentTick))
	})
	hub.CaptureException(err)
}

// Handler serves the arena HTTP surface.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Session is the driver that owns the arena.
func (a *App) Session() *driver.Session {
	return a.session
}

// Router is the event router the arena publishes to.
func (a *App) Router() *logging.Router {
	return a.router
}

// Close flushes the event router and any error reporting.
func (a *App) Close(ctx context.Context) error {
	if a.sentry {
		sentry.Flush(sentryFlush)
	}
	if err := a.router.Close(ctx); err != nil {
		return fmt.Errorf("failed to close logging router: %w", err)
	}
	return nil
}

// Run serves the arena until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config) error {
	a, err := New(cfg, Deps{})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := a.Close(closeCtx); cerr != nil {
			fmt.Fprintln(os.Stderr, cerr)
		}
	}()

	stopStatsview := observability.StartStatsview(a.obs.StatsviewAddr)
	defer stopStatsview()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopDone := make(chan error, 1)
	go func() {
		var err error
		defer func() { loopDone <- err }()
		defer sentry.Recover()
		err = a.session.Run(ctx)
	}()

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: a.handler}
	serveErr := make(chan error, 1)
	go func() {
		defer sentry.Recover()
		a.logger.Infof("arena listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("server shutdown: %w", err)
	}
	<-loopDone
	return runErr
}
