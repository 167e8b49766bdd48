package pipeline

import "time"

// Config bounds one pipeline run. The run deadline is the only cancellation
// mechanism threaded through the stages.
type Config struct {
	RunTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunTimeout: 10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}
