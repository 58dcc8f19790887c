// Package config loads arena settings from defaults, an optional YAML or
// JSON file, .env files and the process environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"paint-bots/client/internal/display"
	"paint-bots/client/internal/game"
	"paint-bots/client/internal/sim"
	"paint-bots/client/internal/spatial"
	"paint-bots/client/logging"
)

type Config struct {
	Arena         Arena         `mapstructure:"arena" json:"arena"`
	Display       Display       `mapstructure:"display" json:"display"`
	Server        Server        `mapstructure:"server" json:"server"`
	Logging       Logging       `mapstructure:"logging" json:"logging"`
	Observability Observability `mapstructure:"observability" json:"observability"`
}

type Arena struct {
	MapWidth               uint32  `mapstructure:"map_width" json:"map_width" jsonschema:"minimum=1"`
	MapHeight              uint32  `mapstructure:"map_height" json:"map_height" jsonschema:"minimum=1"`
	TicksPerNetstep        uint32  `mapstructure:"ticks_per_netstep" json:"ticks_per_netstep" jsonschema:"minimum=1"`
	TickDurationMS         uint32  `mapstructure:"tick_duration_ms" json:"tick_duration_ms" jsonschema:"minimum=1"`
	Seed                   uint64  `mapstructure:"seed" json:"seed"`
	Teams                  uint16  `mapstructure:"teams" json:"teams" jsonschema:"minimum=1"`
	BotsPerTeam            uint32  `mapstructure:"bots_per_team" json:"bots_per_team"`
	SpatialIndex           string  `mapstructure:"spatial_index" json:"spatial_index" jsonschema:"enum=grid,enum=quadtree"`
	GridDivisionsLog2      uint    `mapstructure:"grid_divisions_log2" json:"grid_divisions_log2" jsonschema:"maximum=12"`
	CellScanCap            int     `mapstructure:"cell_scan_cap" json:"cell_scan_cap" jsonschema:"minimum=1"`
	QuadtreeSplitThreshold int     `mapstructure:"quadtree_split_threshold" json:"quadtree_split_threshold" jsonschema:"minimum=1"`
	QuadtreeMinRegion      float32 `mapstructure:"quadtree_min_region" json:"quadtree_min_region"`
	AccelMax               float32 `mapstructure:"accel_max" json:"accel_max"`
	SpeedMax               float32 `mapstructure:"speed_max" json:"speed_max"`
	Bounce                 float32 `mapstructure:"bounce" json:"bounce"`
	CollisionRadius        float32 `mapstructure:"collision_radius" json:"collision_radius"`
	MarkerRadius           float32 `mapstructure:"marker_radius" json:"marker_radius"`
}

type Display struct {
	Gain      float64 `mapstructure:"gain" json:"gain"`
	TargetLag float64 `mapstructure:"target_lag" json:"target_lag"`
	MinRatio  float64 `mapstructure:"min_ratio" json:"min_ratio"`
	MaxRatio  float64 `mapstructure:"max_ratio" json:"max_ratio"`
	Window    int     `mapstructure:"window" json:"window" jsonschema:"minimum=1"`
	FrameRate int     `mapstructure:"frame_rate" json:"frame_rate" jsonschema:"minimum=1"`
	// MaxCatchUpMS bounds the elapsed time fed to one frame after a stall.
	MaxCatchUpMS float64 `mapstructure:"max_catch_up_ms" json:"max_catch_up_ms"`
}

type Server struct {
	Addr    string `mapstructure:"addr" json:"addr"`
	SiteDir string `mapstructure:"site_dir" json:"site_dir"`
}

type Logging struct {
	Level           string   `mapstructure:"level" json:"level"`
	Sinks           []string `mapstructure:"sinks" json:"sinks"`
	MinimumSeverity string   `mapstructure:"minimum_severity" json:"minimum_severity"`
	BufferSize      int      `mapstructure:"buffer_size" json:"buffer_size"`
	JSONPath        string   `mapstructure:"json_path" json:"json_path"`
	JSONMaxSizeMB   int      `mapstructure:"json_max_size_mb" json:"json_max_size_mb"`
}

type Observability struct {
	EnablePprof       bool   `mapstructure:"enable_pprof" json:"enable_pprof"`
	StatsviewAddr     string `mapstructure:"statsview_addr" json:"statsview_addr"`
	SentryDSN         string `mapstructure:"sentry_dsn" json:"sentry_dsn"`
	SentryEnvironment string `mapstructure:"sentry_environment" json:"sentry_environment"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	g := game.DefaultConfig()
	logCfg := logging.DefaultConfig()
	return Config{
		Arena: Arena{
			MapWidth:               g.MapWidth,
			MapHeight:              g.MapHeight,
			TicksPerNetstep:        g.TicksPerNetstep,
			TickDurationMS:         g.TickDurationMS,
			Seed:                   g.Seed,
			Teams:                  g.Teams,
			BotsPerTeam:            g.BotsPerTeam,
			SpatialIndex:           string(g.SpatialIndex),
			GridDivisionsLog2:      g.DivisionsLog2,
			CellScanCap:            g.ScanCap,
			QuadtreeSplitThreshold: g.SplitThreshold,
			QuadtreeMinRegion:      g.MinRegion,
			AccelMax:               g.Tuning.AccelMax,
			SpeedMax:               g.Tuning.SpeedMax,
			Bounce:                 g.Tuning.Bounce,
			CollisionRadius:        g.Tuning.CollisionRadius,
			MarkerRadius:           g.Tuning.MarkerRadius,
		},
		Display: Display{
			Gain:         g.Display.Gain,
			TargetLag:    g.Display.TargetLag,
			MinRatio:     g.Display.MinRatio,
			MaxRatio:     g.Display.MaxRatio,
			Window:       g.Display.Window,
			FrameRate:    60,
			MaxCatchUpMS: 250,
		},
		Server: Server{
			Addr:    ":8910",
			SiteDir: "./site/",
		},
		Logging: Logging{
			Level:           "info",
			Sinks:           logCfg.EnabledSinks,
			MinimumSeverity: logCfg.MinimumSeverity.String(),
			BufferSize:      logCfg.BufferSize,
			JSONMaxSizeMB:   logCfg.JSON.MaxSizeMB,
		},
	}
}

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"arena.map_width":                  "MAP_WIDTH",
	"arena.map_height":                 "MAP_HEIGHT",
	"arena.ticks_per_netstep":          "TICKS_PER_NETSTEP",
	"arena.tick_duration_ms":           "TICK_DURATION_MS",
	"arena.seed":                       "SEED",
	"arena.teams":                      "TEAMS",
	"arena.bots_per_team":              "BOTS_PER_TEAM",
	"arena.spatial_index":              "SPATIAL_INDEX",
	"arena.grid_divisions_log2":        "GRID_DIVISIONS_LOG2",
	"arena.cell_scan_cap":              "CELL_SCAN_CAP",
	"arena.quadtree_split_threshold":   "QUADTREE_SPLIT_THRESHOLD",
	"arena.quadtree_min_region":        "QUADTREE_MIN_REGION",
	"arena.accel_max":                  "ACCEL_MAX",
	"arena.speed_max":                  "SPEED_MAX",
	"arena.bounce":                     "BOUNCE",
	"arena.collision_radius":           "COLLISION_RADIUS",
	"arena.marker_radius":              "MARKER_RADIUS",
	"display.gain":                     "DISPLAY_GAIN",
	"display.target_lag":               "DISPLAY_TARGET_LAG",
	"display.min_ratio":                "DISPLAY_MIN_RATIO",
	"display.max_ratio":                "DISPLAY_MAX_RATIO",
	"display.window":                   "DISPLAY_WINDOW",
	"display.frame_rate":               "FRAME_RATE",
	"display.max_catch_up_ms":          "MAX_CATCH_UP_MS",
	"server.addr":                      "ADDR",
	"server.site_dir":                  "SITE_DIR",
	"logging.level":                    "LOG_LEVEL",
	"logging.sinks":                    "LOG_SINKS",
	"logging.minimum_severity":         "LOG_MIN_SEVERITY",
	"logging.buffer_size":              "LOG_BUFFER_SIZE",
	"logging.json_path":                "LOG_JSON_PATH",
	"logging.json_max_size_mb":         "LOG_JSON_MAX_SIZE_MB",
	"observability.enable_pprof":       "ENABLE_PPROF",
	"observability.statsview_addr":     "STATSVIEW_ADDR",
	"observability.sentry_dsn":         "SENTRY_DSN",
	"observability.sentry_environment": "SENTRY_ENVIRONMENT",
}

// Load reads configPath (optional) and envFiles (".env" when none are given).
// Missing env files are skipped; a missing config file is an error.
func Load(configPath string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	v := viper.New()
	setDefaults(v, Default())
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if len(cfg.Logging.Sinks) == 1 && strings.Contains(cfg.Logging.Sinks[0], ",") {
		cfg.Logging.Sinks = splitList(cfg.Logging.Sinks[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	a := d.Arena
	for key, value := range map[string]any{
		"arena.map_width":                  a.MapWidth,
		"arena.map_height":                 a.MapHeight,
		"arena.ticks_per_netstep":          a.TicksPerNetstep,
		"arena.tick_duration_ms":           a.TickDurationMS,
		"arena.seed":                       a.Seed,
		"arena.teams":                      a.Teams,
		"arena.bots_per_team":              a.BotsPerTeam,
		"arena.spatial_index":              a.SpatialIndex,
		"arena.grid_divisions_log2":        a.GridDivisionsLog2,
		"arena.cell_scan_cap":              a.CellScanCap,
		"arena.quadtree_split_threshold":   a.QuadtreeSplitThreshold,
		"arena.quadtree_min_region":        a.QuadtreeMinRegion,
		"arena.accel_max":                  a.AccelMax,
		"arena.speed_max":                  a.SpeedMax,
		"arena.bounce":                     a.Bounce,
		"arena.collision_radius":           a.CollisionRadius,
		"arena.marker_radius":              a.MarkerRadius,
		"display.gain":                     d.Display.Gain,
		"display.target_lag":               d.Display.TargetLag,
		"display.min_ratio":                d.Display.MinRatio,
		"display.max_ratio":                d.Display.MaxRatio,
		"display.window":                   d.Display.Window,
		"display.frame_rate":               d.Display.FrameRate,
		"display.max_catch_up_ms":          d.Display.MaxCatchUpMS,
		"server.addr":                      d.Server.Addr,
		"server.site_dir":                  d.Server.SiteDir,
		"logging.level":                    d.Logging.Level,
		"logging.sinks":                    d.Logging.Sinks,
		"logging.minimum_severity":         d.Logging.MinimumSeverity,
		"logging.buffer_size":              d.Logging.BufferSize,
		"logging.json_path":                d.Logging.JSONPath,
		"logging.json_max_size_mb":         d.Logging.JSONMaxSizeMB,
		"observability.enable_pprof":       d.Observability.EnablePprof,
		"observability.statsview_addr":     d.Observability.StatsviewAddr,
		"observability.sentry_dsn":         d.Observability.SentryDSN,
		"observability.sentry_environment": d.Observability.SentryEnvironment,
	} {
		v.SetDefault(key, value)
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate checks every group and reports the first problem.
func (c Config) Validate() error {
	if _, err := c.Game(); err != nil {
		return err
	}
	if c.Arena.GridDivisionsLog2 > spatial.MaxDivisionsLog2 {
		return fmt.Errorf("grid_divisions_log2 %d exceeds %d", c.Arena.GridDivisionsLog2, spatial.MaxDivisionsLog2)
	}
	if c.Arena.CellScanCap < 1 {
		return fmt.Errorf("cell_scan_cap must be >= 1, got %d", c.Arena.CellScanCap)
	}
	if c.Display.FrameRate < 1 {
		return fmt.Errorf("frame_rate must be >= 1, got %d", c.Display.FrameRate)
	}
	if c.Display.MaxCatchUpMS <= 0 {
		return fmt.Errorf("max_catch_up_ms must be > 0, got %v", c.Display.MaxCatchUpMS)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must be set")
	}
	if _, err := logging.ParseSeverity(c.Logging.MinimumSeverity); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for _, sink := range c.Logging.Sinks {
		switch sink {
		case logging.SinkConsole, logging.SinkJSON, logging.SinkMemory:
		default:
			return fmt.Errorf("logging: unknown sink %q", sink)
		}
	}
	return nil
}

// Game converts the arena and display groups into a game.Config.
func (c Config) Game() (game.Config, error) {
	kind, err := spatial.ParseKind(c.Arena.SpatialIndex)
	if err != nil {
		return game.Config{}, err
	}
	cfg := game.Config{
		MapWidth:        c.Arena.MapWidth,
		MapHeight:       c.Arena.MapHeight,
		TicksPerNetstep: c.Arena.TicksPerNetstep,
		TickDurationMS:  c.Arena.TickDurationMS,
		Seed:            c.Arena.Seed,
		Teams:           c.Arena.Teams,
		BotsPerTeam:     c.Arena.BotsPerTeam,
		Tuning: sim.Tuning{
			AccelMax:        c.Arena.AccelMax,
			SpeedMax:        c.Arena.SpeedMax,
			Bounce:          c.Arena.Bounce,
			CollisionRadius: c.Arena.CollisionRadius,
			MarkerRadius:    c.Arena.MarkerRadius,
			StartHealth:     sim.DefaultTuning().StartHealth,
		},
		SpatialIndex:   kind,
		DivisionsLog2:  c.Arena.GridDivisionsLog2,
		ScanCap:        c.Arena.CellScanCap,
		SplitThreshold: c.Arena.QuadtreeSplitThreshold,
		MinRegion:      c.Arena.QuadtreeMinRegion,
		Display: display.Params{
			Gain:      c.Display.Gain,
			TargetLag: c.Display.TargetLag,
			MinRatio:  c.Display.MinRatio,
			MaxRatio:  c.Display.MaxRatio,
			Window:    c.Display.Window,
		},
	}
	if err := cfg.Validate(); err != nil {
		return game.Config{}, err
	}
	return cfg, nil
}

// LoggingConfig builds the event router configuration.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if len(c.Logging.Sinks) > 0 {
		cfg.EnabledSinks = append([]string(nil), c.Logging.Sinks...)
	}
	if severity, err := logging.ParseSeverity(c.Logging.MinimumSeverity); err == nil {
		cfg.MinimumSeverity = severity
	}
	if c.Logging.BufferSize > 0 {
		cfg.BufferSize = c.Logging.BufferSize
	}
	cfg.JSON.FilePath = c.Logging.JSONPath
	if c.Logging.JSONMaxSizeMB > 0 {
		cfg.JSON.MaxSizeMB = c.Logging.JSONMaxSizeMB
	}
	cfg.Console.Level = c.Logging.Level
	return cfg
}
