package ecs_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/plus3/kiln/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSystems(t *testing.T, scene *ecs.Scene, systems ...ecs.System) error {
	t.Helper()
	frame := ecs.NewUpdateFrame(context.Background(), ecs.Timing{DeltaTime: 0.016, Time: time.Now()}, scene)
	for _, system := range systems {
		if err := system.Execute(frame); err != nil {
			return err
		}
	}
	return nil
}

func TestMaintenanceSystem(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, `seed: {components: {Spawner: {depth: 2}}}`)
	require.NoError(t, err)

	require.NoError(t, runSystems(t, scene, &ecs.MaintenanceSystem{}))
	assert.Equal(t, 0, scene.Pending())
	assert.NoError(t, runSystems(t, nil, &ecs.MaintenanceSystem{}))
}

func TestLogicSystem(t *testing.T) {
	ctx := context.Background()

	t.Run("updates run concurrently", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, `
first: {components: {Gate: {role: wait}}}
second: {components: {Gate: {role: release}}}
`)
		require.NoError(t, err)
		require.NoError(t, scene.Refresh(ctx))

		logic := ecs.NewQuery[ecs.Updater]()
		require.NoError(t, logic.Execute(ctx, scene))
		require.Equal(t, 2, logic.Len())

		assert.NoError(t, runSystems(t, scene, &ecs.LogicSystem{}))
	})

	t.Run("only ready, enabled, active components", func(t *testing.T) {
		rec := &recorder{}
		registry := newTestRegistry(rec)
		scene, err := loadScene(registry, `
a: {components: {Ticker: {}}}
b:
  components: {Ticker: {}}
  children:
    c: {components: {Ticker: {}}}
d: {components: {Ticker: {}}}
`)
		require.NoError(t, err)

		require.NoError(t, runSystems(t, scene, &ecs.LogicSystem{}))
		assert.Empty(t, rec.Events(), "nothing is ready before maintenance")

		scene.FindObject("b").SetActive(false)
		ticker, _ := ecs.GetComponent[*Ticker](scene.FindObject("d"), "Ticker")
		ticker.SetEnabled(false)

		require.NoError(t, runSystems(t, scene, &ecs.MaintenanceSystem{}, &ecs.LogicSystem{MaxParallel: 1}))
		assert.Equal(t, []string{"update:a"}, rec.Events())
	})

	t.Run("sequential updates follow walk order", func(t *testing.T) {
		rec := &recorder{}
		registry := newTestRegistry(rec)
		scene, err := loadScene(registry, `
a: {components: {Ticker: {}}, children: {a1: {components: {Ticker: {}}}}}
b: {components: {Ticker: {}}}
`)
		require.NoError(t, err)

		require.NoError(t, runSystems(t, scene, &ecs.MaintenanceSystem{}, &ecs.LogicSystem{MaxParallel: 1}))
		assert.Equal(t, []string{"update:a", "update:a1", "update:b"}, rec.Events())
	})

	t.Run("a failing update aborts the pass", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, `
ok: {components: {Ticker: {}}}
bad: {components: {Failing: {phase: update}}}
`)
		require.NoError(t, err)

		err = runSystems(t, scene, &ecs.MaintenanceSystem{}, &ecs.LogicSystem{})
		assert.ErrorIs(t, err, errBoom)
		assert.ErrorContains(t, err, "/bad")
	})
}

func TestDisplaySystem(t *testing.T) {
	rec := &recorder{}
	registry := newTestRegistry(rec)
	scene, err := loadScene(registry, `
cam: {components: {Lens: {}}}
p1: {components: {Painter: {}}}
p2: {components: {Painter: {}}}
`)
	require.NoError(t, err)

	require.NoError(t, runSystems(t, scene, &ecs.MaintenanceSystem{}, &ecs.DisplaySystem{}))

	events := rec.Events()
	require.Len(t, events, 3)
	assert.ElementsMatch(t, []string{"display:p1", "display:p2"}, events[:2])
	assert.Equal(t, "render:cam", events[2])
	for _, e := range events[:2] {
		assert.True(t, strings.HasPrefix(e, "display:"))
	}
}

func TestDisplaySystemCollectsRenderersBeforeDisplay(t *testing.T) {
	rec := &recorder{}
	registry := newTestRegistry(rec)
	scene, err := loadScene(registry, `
cam: {components: {Lens: {}}}
curtain: {components: {Curtain: {target: cam}}}
`)
	require.NoError(t, err)

	require.NoError(t, runSystems(t, scene, &ecs.MaintenanceSystem{}, &ecs.DisplaySystem{}))
	assert.Equal(t, []string{"render:cam"}, rec.Events())
	assert.False(t, scene.FindObject("cam").Active())

	require.NoError(t, runSystems(t, scene, &ecs.DisplaySystem{}))
	assert.Equal(t, []string{"render:cam"}, rec.Events(), "hidden camera stops rendering on the next frame")
}

func TestDisplaySystemSequential(t *testing.T) {
	rec := &recorder{}
	registry := newTestRegistry(rec)
	scene, err := loadScene(registry, `
p1: {components: {Painter: {}}}
cam: {components: {Lens: {}}}
p2: {components: {Painter: {}}}
`)
	require.NoError(t, err)

	require.NoError(t, runSystems(t, scene, &ecs.MaintenanceSystem{}, &ecs.DisplaySystem{MaxParallel: 1}))
	assert.Equal(t, []string{"display:p1", "display:p2", "render:cam"}, rec.Events())
}
