package observability

// Config captures opt-in observability toggles that wire into the arena.
type Config struct {
	EnablePprof bool
	// StatsviewAddr starts the runtime chart viewer when set, e.g. "localhost:18066".
	StatsviewAddr string
}
