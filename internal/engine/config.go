package engine

import (
	"time"

	"github.com/rs/zerolog"

	"adapterd/internal/basemodel"
)

// Config wires an engine's collaborators. Provider is required; the rest
// default to the standard runtime factory, a no-op publisher, and a no-op
// logger.
type Config struct {
	Provider  basemodel.Provider
	Sessions  SessionFactory
	Publisher EventPublisher
	Logger    *zerolog.Logger
}

// NewWithConfig creates an engine with explicit collaborators, applying
// defaults for any left nil.
func NewWithConfig(cfg Config) *Engine {
	e := &Engine{
		provider:  cfg.Provider,
		sessions:  cfg.Sessions,
		pub:       cfg.Publisher,
		log:       zerolog.Nop(),
		state:     StateNotInitialized,
		startTime: time.Now(),
	}
	if e.sessions == nil {
		e.sessions = newDefaultSessionFactory()
	}
	if e.pub == nil {
		e.pub = noopPublisher{}
	}
	if cfg.Logger != nil {
		e.log = *cfg.Logger
	}
	return e
}
