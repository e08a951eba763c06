package ecs

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Stage holds the current scene. Loading a scene builds it completely and then
// replaces the previous one, which is torn down.
type Stage struct {
	registry *ComponentRegistry
	cfg      Config
	current  atomic.Pointer[Scene]
	log      zerolog.Logger
}

func NewStage(registry *ComponentRegistry, cfg Config) *Stage {
	return &Stage{
		registry: registry,
		cfg:      cfg,
		log:      Logger("stage"),
	}
}

// Current returns the loaded scene, or nil.
func (st *Stage) Current() *Scene {
	return st.current.Load()
}

func (st *Stage) Registry() *ComponentRegistry {
	return st.registry
}

// NewScene creates an empty scene configured like the ones Load builds.
func (st *Stage) NewScene() *Scene {
	return NewScene(st.registry,
		WithMaxParallel(st.cfg.MaxParallel),
		WithMaxSetupPasses(st.cfg.MaxSetupPasses),
	)
}

// Load creates a scene from desc and makes it current. Setup runs on the next
// refresh. When creation fails the previous scene stays current.
func (st *Stage) Load(ctx context.Context, desc Description) (*Scene, error) {
	scene := st.NewScene()
	if err := scene.Create(ctx, desc); err != nil {
		scene.Teardown()
		return nil, err
	}
	st.Swap(scene)
	return scene, nil
}

// LoadFile reads a scene description from path and loads it.
func (st *Stage) LoadFile(ctx context.Context, path string) (*Scene, error) {
	desc, err := LoadDescriptionFile(path)
	if err != nil {
		return nil, err
	}
	scene, err := st.Load(ctx, desc)
	if err != nil {
		return nil, err
	}
	st.log.Info().Str("path", path).Msg("scene loaded")
	return scene, nil
}

// Swap makes scene current and tears down the previous one.
func (st *Stage) Swap(scene *Scene) {
	if prev := st.current.Swap(scene); prev != nil && prev != scene {
		prev.Teardown()
	}
}

// Unload tears down the current scene.
func (st *Stage) Unload() {
	st.Swap(nil)
}
