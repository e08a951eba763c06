package ecs

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
)

// Config holds engine settings. Values come from environment variables with the
// listed defaults and can be overridden by command line flags.
type Config struct {
	// Frames per second driven by Scheduler.Run.
	TickRate float64 `env:"KILN_TICK_RATE" envDefault:"60"`

	// Upper bound for the per-frame delta time.
	MaxDelta time.Duration `env:"KILN_MAX_DELTA" envDefault:"100ms"`

	// Maximum number of component calls in flight during one pass. 0 means unbounded,
	// 1 runs the pass strictly in walk order.
	MaxParallel int `env:"KILN_MAX_PARALLEL" envDefault:"0"`

	// Maximum number of setup passes per Refresh. 0 means unlimited.
	MaxSetupPasses int `env:"KILN_MAX_SETUP_PASSES" envDefault:"0"`

	LogLevel string `env:"KILN_LOG_LEVEL" envDefault:"info"`

	// Scene file loaded at startup by the command line runners.
	ScenePath string `env:"KILN_SCENE"`

	WindowWidth  int `env:"KILN_WINDOW_WIDTH" envDefault:"1280"`
	WindowHeight int `env:"KILN_WINDOW_HEIGHT" envDefault:"720"`
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{
		TickRate:     60,
		MaxDelta:     100 * time.Millisecond,
		LogLevel:     "info",
		WindowWidth:  1280,
		WindowHeight: 720,
	}
}

// LoadConfig reads the configuration from the environment and validates it.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse engine config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate engine config")
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (cfg *Config) Validate() error {
	if cfg.TickRate <= 0 {
		return eris.New("tick rate must be positive")
	}
	if cfg.MaxDelta <= 0 {
		return eris.New("max delta must be positive")
	}
	if cfg.MaxParallel < 0 {
		return eris.New("max parallel cannot be negative")
	}
	if cfg.MaxSetupPasses < 0 {
		return eris.New("max setup passes cannot be negative")
	}
	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		return eris.New("window size must be positive")
	}
	return nil
}

// TickInterval returns the wall-clock duration of one frame.
func (cfg *Config) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / cfg.TickRate)
}
