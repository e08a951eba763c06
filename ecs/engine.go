package ecs

import (
	"context"
)

// Engine bundles a Stage with a Scheduler running the standard frame:
// maintenance, logic, then display.
type Engine struct {
	Config    Config
	Registry  *ComponentRegistry
	Stage     *Stage
	Scheduler *Scheduler
}

func NewEngine(cfg Config, registry *ComponentRegistry) *Engine {
	stage := NewStage(registry, cfg)
	scheduler := NewScheduler(stage, cfg)
	scheduler.Register(&MaintenanceSystem{})
	scheduler.Register(&LogicSystem{MaxParallel: cfg.MaxParallel})
	scheduler.Register(&DisplaySystem{MaxParallel: cfg.MaxParallel})

	return &Engine{
		Config:    cfg,
		Registry:  registry,
		Stage:     stage,
		Scheduler: scheduler,
	}
}

// Load replaces the current scene with one built from desc.
func (e *Engine) Load(ctx context.Context, desc Description) (*Scene, error) {
	return e.Stage.Load(ctx, desc)
}

func (e *Engine) LoadFile(ctx context.Context, path string) (*Scene, error) {
	return e.Stage.LoadFile(ctx, path)
}

// Run steps the frame at the configured tick rate until ctx is cancelled or a frame fails.
func (e *Engine) Run(ctx context.Context) error {
	return e.Scheduler.Run(ctx, e.Config.TickInterval())
}
