package engine

import (
	"context"

	"prover/internal/config"
	"prover/internal/config/logger"
)

type factory struct {
	cfg *config.Config
	log logger.Logger
}

// NewFactory creates a factory bound to cfg
func NewFactory(cfg *config.Config, log logger.Logger) Factory {
	return &factory{cfg: cfg, log: log}
}

// Start spawns a new session for logic, or the configured default when logic is empty
func (f *factory) Start(ctx context.Context, logic string) (Engine, error) {
	return New(ctx, f.cfg, f.log, logic)
}
