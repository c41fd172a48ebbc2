package states

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-states/pkg/activity"
)

// Config holds the environment-driven defaults shared by gates, evaluators
// and pipelines.
type Config struct {
	PruneEmpty       bool   `env:"STATES_PRUNE_EMPTY"         envDefault:"true"`
	GateMemoSize     int    `env:"STATES_GATE_MEMO_SIZE"      envDefault:"0"`
	ProgramCacheSize int    `env:"STATES_PROGRAM_CACHE_SIZE"  envDefault:"256"`
	ActivityEnabled  bool   `env:"STATES_ACTIVITY_ENABLED"    envDefault:"false"`
	ActivityChannel  string `env:"STATES_ACTIVITY_CHANNEL"    envDefault:"states"`
	LogMode          string `env:"STATES_LOG_MODE"            envDefault:"production"`
}

// DefaultConfig returns the values applied when no variable is set.
func DefaultConfig() Config {
	return Config{
		PruneEmpty:       true,
		ProgramCacheSize: 256,
		ActivityChannel:  activity.DefaultChannel,
		LogMode:          "production",
	}
}

// LoadConfigFromEnv reads Config from the process environment.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("states: parse env: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads Config from environ instead of the process environment.
func LoadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return DefaultConfig(), fmt.Errorf("states: parse env: %w", err)
	}
	return cfg, nil
}

// ActivityConfig maps the activity fields onto activity.Config.
func (c Config) ActivityConfig() activity.Config {
	return activity.Config{
		Enabled: c.ActivityEnabled,
		Channel: c.ActivityChannel,
	}
}

// GateOptions returns the gate options implied by the config.
func (c Config) GateOptions() []GateOption {
	if c.GateMemoSize <= 0 {
		return nil
	}
	return []GateOption{WithGateMemo(c.GateMemoSize)}
}

// ProgramCache builds the shared compiled-program cache, or nil when caching
// is disabled.
func (c Config) ProgramCache() (ProgramCache, error) {
	if c.ProgramCacheSize <= 0 {
		return nil, nil
	}
	cache, err := NewLRUProgramCache(c.ProgramCacheSize)
	if err != nil {
		return nil, err
	}
	return cache, nil
}
