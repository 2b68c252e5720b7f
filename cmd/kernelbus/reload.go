package main

import (
	"sync"

	"github.com/goclaw/kernelbus/config"
	"github.com/goclaw/kernelbus/pkg/logger"
	"github.com/goclaw/kernelbus/pkg/signal"
)

// policySetter is the part of *kernel.Kernel the reloader drives.
type policySetter interface {
	SetPolicy(p signal.Policy) error
}

// reloader applies the hot-reloadable part of a reloaded configuration.
// Everything else needs a restart.
type reloader struct {
	mu      sync.Mutex
	log     logger.Logger
	kernel  policySetter
	current config.HotReloadableConfig
}

func newReloader(log logger.Logger, k policySetter, cfg *config.Config) *reloader {
	return &reloader{
		log:     log,
		kernel:  k,
		current: config.ExtractHotReloadable(cfg),
	}
}

func (r *reloader) apply(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := config.ExtractHotReloadable(cfg)
	if !r.current.Changed(next) {
		r.log.Debug("config reloaded without hot-reloadable changes")
		return
	}

	if next.LogLevel != r.current.LogLevel {
		r.log.SetLevel(logger.ParseLevel(next.LogLevel))
		r.log.Info("log level changed", "from", r.current.LogLevel, "to", next.LogLevel)
		r.current.LogLevel = next.LogLevel
	}

	if next.DefaultPolicy != r.current.DefaultPolicy {
		p, err := signal.ParsePolicy(next.DefaultPolicy)
		if err == nil {
			err = r.kernel.SetPolicy(p)
		}
		if err != nil {
			r.log.Error("failed to apply signal policy", "policy", next.DefaultPolicy, "error", err)
			return
		}
		r.current.DefaultPolicy = next.DefaultPolicy
	}
}
