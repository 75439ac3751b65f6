// Package timeouts provides the deadlines handlers put on store I/O.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks
//   - Short: single-document reads (get recipe, get list)
//   - Medium: list queries and single writes
//   - Long: writes touching several collections (calendar cascade delete)
//   - Generate: meal-plan generation and grocery list builds, which read
//     several pools and write a whole window of rows
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultMedium   = 10 * time.Second
	DefaultLong     = 30 * time.Second
	DefaultGenerate = 45 * time.Second
)

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Long     time.Duration
	Generate time.Duration
}

var defaults = Config{
	Ping:     DefaultPing,
	Short:    DefaultShort,
	Medium:   DefaultMedium,
	Long:     DefaultLong,
	Generate: DefaultGenerate,
}

var (
	mu      sync.RWMutex
	current = defaults
)

func get(f func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return f(current)
}

func Ping() time.Duration     { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration    { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration   { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration     { return get(func(c Config) time.Duration { return c.Long }) }
func Generate() time.Duration { return get(func(c Config) time.Duration { return c.Generate }) }

// Configure overrides the non-zero values in cfg. Call during startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	merge(&current, cfg)
}

func merge(dst *Config, src Config) {
	for _, p := range []struct {
		dst *time.Duration
		src time.Duration
	}{
		{&dst.Ping, src.Ping},
		{&dst.Short, src.Short},
		{&dst.Medium, src.Medium},
		{&dst.Long, src.Long},
		{&dst.Generate, src.Generate},
	} {
		if p.src > 0 {
			*p.dst = p.src
		}
	}
}

// Reset restores all timeouts to their default values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults
}

// ConfigureFromEnv reads MEALHUB_TIMEOUT_{PING,SHORT,MEDIUM,LONG,GENERATE}
// as Go durations ("2s", "500ms"). Unset, invalid or non-positive values are
// skipped. Returns the number of timeouts configured.
func ConfigureFromEnv() int {
	var cfg Config
	n := 0
	for name, dst := range map[string]*time.Duration{
		"MEALHUB_TIMEOUT_PING":     &cfg.Ping,
		"MEALHUB_TIMEOUT_SHORT":    &cfg.Short,
		"MEALHUB_TIMEOUT_MEDIUM":   &cfg.Medium,
		"MEALHUB_TIMEOUT_LONG":     &cfg.Long,
		"MEALHUB_TIMEOUT_GENERATE": &cfg.Generate,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
			n++
		}
	}
	Configure(cfg)
	return n
}

// Current returns the timeout configuration in effect.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context was canceled due to deadline exceeded.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Generate(), h.Log, "generate meal plan")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
