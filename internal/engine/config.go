package engine

import (
	"runtime"
	"time"

	"github.com/roach88/stabsim/internal/simerr"
)

// Defaults used by DefaultConfig and the CLI flags.
const (
	DefaultShots     = 1000
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 2
	DefaultCacheSize = 256
)

// Config configures a Simulator. It is validated once, in New.
type Config struct {
	// Executable is the external simulator binary. Required unless a runner
	// is injected with WithRunner.
	Executable string

	// Args are passed to Executable before the program file path.
	Args []string

	// Shots is the number of independent executions per circuit. Must be >= 1.
	Shots int

	// Timeout bounds one simulator attempt. Must be > 0.
	Timeout time.Duration

	// Retries is the number of extra attempts a failed shot gets. Must be >= 0.
	Retries int

	// Workers bounds concurrent shots. Zero means GOMAXPROCS.
	Workers int

	// CacheSize is the translation cache capacity. Zero disables it.
	CacheSize int
}

// DefaultConfig returns a configuration with every field but Executable set.
func DefaultConfig() Config {
	return Config{
		Shots:     DefaultShots,
		Timeout:   DefaultTimeout,
		Retries:   DefaultRetries,
		CacheSize: DefaultCacheSize,
	}
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// validate reports the first invalid field. needExecutable is false when a
// runner was injected.
func (c Config) validate(needExecutable bool) error {
	switch {
	case c.Shots < 1:
		return simerr.Configuration("shots must be >= 1, got %d", c.Shots)
	case c.Retries < 0:
		return simerr.Configuration("retries must be >= 0, got %d", c.Retries)
	case c.Timeout <= 0:
		return simerr.Configuration("timeout must be > 0, got %s", c.Timeout)
	case c.Workers < 1:
		return simerr.Configuration("workers must be >= 1, got %d", c.Workers)
	case c.CacheSize < 0:
		return simerr.Configuration("cache size must be >= 0, got %d", c.CacheSize)
	case needExecutable && c.Executable == "":
		return simerr.Configuration("simulator executable is required")
	}
	return nil
}
