package aos

import (
	"time"

	"go.uber.org/zap"
)

// engineConfig holds construction-time wiring shared by Coordinator and
// ScrollEngine. Animation behavior lives in Options and is merged through
// Init; this is the plumbing around it.
type engineConfig struct {
	logger   *zap.Logger
	debounce time.Duration
	watcher  MutationWatcher
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		logger:   zap.NewNop(),
		debounce: DefaultResizeDebounce,
		watcher:  newMutationWatcher(),
	}
}

// Option configures engine construction.
type Option func(*engineConfig)

// WithLogger installs a logger for lifecycle transitions and degraded
// capability warnings. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithResizeDebounce overrides the trailing-edge window for
// resize-triggered rebuilds.
func WithResizeDebounce(window time.Duration) Option {
	return func(c *engineConfig) { c.debounce = window }
}

// WithMutationWatcher replaces the mutation watching capability. Tests use
// this to simulate environments without mutation observation.
func WithMutationWatcher(w MutationWatcher) Option {
	return func(c *engineConfig) {
		if w != nil {
			c.watcher = w
		}
	}
}
