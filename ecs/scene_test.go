package ecs_test

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/plus3/kiln/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const treeScene = `
a:
  components:
    Value: {n: 1}
  children:
    a1:
      components:
        Value: {n: 11}
    shared: {}
b:
  children:
    shared:
      components:
        Value: {n: 21}
c:
  components:
    Ticker: {}
`

func walkNames(t *testing.T, scene *ecs.Scene, all bool) []string {
	t.Helper()
	var names []string
	fn := func(_ context.Context, e *ecs.Entity, name string) error {
		names = append(names, name)
		return nil
	}
	var err error
	if all {
		err = scene.WalkAll(context.Background(), fn)
	} else {
		err = scene.Walk(context.Background(), fn)
	}
	require.NoError(t, err)
	return names
}

func TestSceneCreate(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, treeScene)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "a", "a1", "shared", "b", "shared", "c"}, walkNames(t, scene, false))

	a1 := scene.FindObject("a1")
	require.NotNil(t, a1)
	v, ok := ecs.GetComponent[*Value](a1, "Value")
	require.True(t, ok)
	assert.Equal(t, 11, v.N)
	assert.Equal(t, ecs.StateCreated, v.State())

	assert.Equal(t, 4, scene.Pending(), "created but not set up")
}

func TestSceneCreateFailure(t *testing.T) {
	registry := newTestRegistry(nil)

	_, err := loadScene(registry, `x: {components: {Nope: {}}}`)
	assert.ErrorIs(t, err, ecs.ErrUnknownComponent)

	_, err = loadScene(registry, `x: {components: {Failing: {phase: create}}}`)
	assert.ErrorIs(t, err, errBoom)
}

func TestSceneFindObject(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, treeScene)
	require.NoError(t, err)

	shared := scene.FindObject("shared")
	require.NotNil(t, shared)
	assert.Same(t, scene.FindObject("a"), shared.Parent(), "first match in depth-first order")

	assert.Nil(t, scene.FindObject(""), "the root is never matched")
	assert.Nil(t, scene.FindObject("missing"))

	scene.FindObject("a").SetActive(false)
	assert.NotNil(t, scene.FindObject("a1"), "inactive subtrees are searched")
}

func TestSceneWalk(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, treeScene)
	require.NoError(t, err)

	t.Run("inactive subtrees are skipped", func(t *testing.T) {
		scene.FindObject("a").SetActive(false)
		defer scene.FindObject("a").SetActive(true)

		assert.Equal(t, []string{"", "b", "shared", "c"}, walkNames(t, scene, false))
		assert.Equal(t, []string{"", "a", "a1", "shared", "b", "shared", "c"}, walkNames(t, scene, true))
	})

	t.Run("skip children", func(t *testing.T) {
		var names []string
		err := scene.Walk(context.Background(), func(_ context.Context, e *ecs.Entity, name string) error {
			names = append(names, name)
			if name == "a" {
				return ecs.ErrSkipChildren
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"", "a", "b", "shared", "c"}, names)
	})

	t.Run("errors stop the walk", func(t *testing.T) {
		var names []string
		err := scene.Walk(context.Background(), func(_ context.Context, e *ecs.Entity, name string) error {
			names = append(names, name)
			if name == "a1" {
				return errBoom
			}
			return nil
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, []string{"", "a", "a1"}, names)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := scene.Walk(ctx, func(context.Context, *ecs.Entity, string) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSceneRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("setup runs once per component", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, treeScene)
		require.NoError(t, err)

		require.NoError(t, scene.Refresh(ctx))
		require.NoError(t, scene.Refresh(ctx))
		assert.Equal(t, 0, scene.Pending())

		v, _ := ecs.GetComponent[*Value](scene.FindObject("a"), "Value")
		assert.Equal(t, int32(1), v.setups.Load())
		assert.True(t, v.Ready())
	})

	t.Run("mutual references", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, `
left:
  components:
    Linker: {other: right.Linker}
right:
  components:
    Linker: {other: left.Linker}
`)
		require.NoError(t, err)
		require.NoError(t, scene.Refresh(ctx))

		left, _ := ecs.GetComponent[*Linker](scene.FindObject("left"), "Linker")
		right, _ := ecs.GetComponent[*Linker](scene.FindObject("right"), "Linker")
		assert.Same(t, right, left.peer)
		assert.Same(t, left, right.peer)
		assert.True(t, left.peerCreated)
		assert.True(t, right.peerCreated)
	})

	t.Run("unresolved reference fails the pass", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, `lonely: {components: {Linker: {other: ghost.Linker}}}`)
		require.NoError(t, err)

		err = scene.Refresh(ctx)
		assert.ErrorIs(t, err, ecs.ErrUnresolvedReference)
		assert.Equal(t, 1, scene.Pending(), "failed setups stay queued")
	})

	t.Run("fixed point with spawning setups", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, `seed: {components: {Spawner: {depth: 3}}}`)
		require.NoError(t, err)
		require.NoError(t, scene.Refresh(ctx))

		assert.Equal(t, 0, scene.Pending())
		leaf := scene.FindObject("gen0")
		require.NotNil(t, leaf)
		assert.Equal(t, "/seed/gen2/gen1/gen0", leaf.Path())
		s, _ := ecs.GetComponent[*Spawner](leaf, "Spawner")
		assert.True(t, s.Ready())
	})

	t.Run("pass limit", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, `seed: {components: {Spawner: {depth: 3}}}`, ecs.WithMaxSetupPasses(2))
		require.NoError(t, err)

		err = scene.Refresh(ctx)
		assert.ErrorIs(t, err, ecs.ErrSetupDiverged)
		assert.Equal(t, 1, scene.Pending())
	})

	t.Run("sequential passes", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, treeScene, ecs.WithMaxParallel(1))
		require.NoError(t, err)
		require.NoError(t, scene.Refresh(ctx))
		assert.Equal(t, 0, scene.Pending())
	})

	t.Run("setup failure", func(t *testing.T) {
		registry := newTestRegistry(nil)
		scene, err := loadScene(registry, `bad: {components: {Failing: {phase: setup}}}`)
		require.NoError(t, err)
		assert.ErrorIs(t, scene.Refresh(ctx), errBoom)
	})
}

func TestSceneLookup(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, treeScene)
	require.NoError(t, err)

	c, err := scene.Lookup("a1.Value")
	require.NoError(t, err)
	assert.Equal(t, 11, c.(*Value).N)

	_, err = scene.Lookup("a1.Ticker")
	assert.ErrorIs(t, err, ecs.ErrUnresolvedReference)
	_, err = scene.Lookup("nobody.Value")
	assert.ErrorIs(t, err, ecs.ErrUnresolvedReference)
	_, err = scene.Lookup("nodot")
	assert.ErrorIs(t, err, ecs.ErrBadReference)
}

func TestSceneDetach(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, treeScene)
	require.NoError(t, err)
	require.Equal(t, 4, scene.Pending())

	a := scene.FindObject("a")
	require.NoError(t, scene.Detach(a))
	assert.Nil(t, a.Parent())
	assert.Equal(t, 2, scene.Pending(), "setups below a are dropped")
	assert.Equal(t, []string{"", "b", "shared", "c"}, walkNames(t, scene, true))

	assert.ErrorIs(t, scene.Detach(a), ecs.ErrNotParentedHere)
	assert.Error(t, scene.Detach(scene.Root()))
}

func TestSceneTeardown(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, `h: {components: {Hooked: {}}}`)
	require.NoError(t, err)
	h, _ := ecs.GetComponent[*Hooked](scene.FindObject("h"), "Hooked")

	scene.Teardown()
	assert.Equal(t, 1, h.disabled)
	assert.Equal(t, 0, scene.Pending())
	assert.Equal(t, 0, scene.Root().ChildCount())
}

func TestSceneStats(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, treeScene)
	require.NoError(t, err)
	scene.FindObject("b").SetActive(false)

	stats := scene.CollectStats()
	assert.Equal(t, 6, stats.Entities)
	assert.Equal(t, 4, stats.ActiveEntities)
	assert.Equal(t, 4, stats.Components)
	assert.Equal(t, 0, stats.ReadyComponents)
	assert.Equal(t, 4, stats.PendingSetups)
	assert.Equal(t, 2, stats.MaxDepth)
	assert.Equal(t, map[string]int{"Value": 3, "Ticker": 1}, stats.ComponentsByType)
}

func TestSceneSnapshot(t *testing.T) {
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, `a: {components: {Value: {n: 3}}, children: {b: {}}}`)
	require.NoError(t, err)
	require.NoError(t, scene.Refresh(context.Background()))

	data, err := scene.DumpJSON(context.Background())
	require.NoError(t, err)

	var decoded ecs.EntitySnapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Children, 1)
	a := decoded.Children[0]
	assert.Equal(t, "a", a.Name)
	require.Len(t, a.Components, 1)
	assert.Equal(t, "Value", a.Components[0].Type)
	assert.Equal(t, "ready", a.Components[0].State)
	assert.JSONEq(t, `{"N":3}`, string(a.Components[0].Data))
	require.Len(t, a.Children, 1)
	assert.Equal(t, "b", a.Children[0].Name)

	snap, err := scene.Snapshot()
	require.NoError(t, err)
	compact, err := ecs.MarshalSnapshot(snap, false)
	require.NoError(t, err)
	assert.NotContains(t, string(compact), "\n")
	assert.Contains(t, string(compact), `"data":{"N":3}`)
}
