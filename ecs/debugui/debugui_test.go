package debugui

import (
	"context"
	"reflect"
	"testing"

	"github.com/plus3/kiln/components"
	"github.com/plus3/kiln/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `
world:
  children:
    ball:
      components:
        Position: {x: 1}
        Motion: {velocity: {x: 1}}
    wheel:
      components:
        Spin: {rate: 1}
hidden:
  components:
    Position: {}
`

func loadTestScene(t *testing.T) *ecs.Scene {
	t.Helper()
	registry := ecs.NewComponentRegistry()
	components.Register(registry)
	Register(registry, nil)

	desc, err := ecs.ParseDescription([]byte(testScene))
	require.NoError(t, err)

	stage := ecs.NewStage(registry, ecs.DefaultConfig())
	scene, err := stage.Load(context.Background(), desc)
	require.NoError(t, err)
	require.NoError(t, scene.Refresh(context.Background()))
	scene.FindObject("hidden").SetActive(false)
	return scene
}

func TestCollectRows(t *testing.T) {
	scene := loadTestScene(t)
	rows := CollectRows(context.Background(), scene)

	paths := make([]string, len(rows))
	for i, row := range rows {
		paths[i] = row.Path
	}
	assert.Equal(t, []string{"/world", "/world/ball", "/world/wheel", "/hidden"}, paths)

	assert.Equal(t, 2, rows[1].Depth)
	assert.Equal(t, []string{"Motion", "Position"}, rows[1].ComponentTypes)
	assert.False(t, rows[3].Active)
}

func TestFilterRows(t *testing.T) {
	rows := CollectRows(context.Background(), loadTestScene(t))

	assert.Len(t, FilterRows(rows, "", true), 4)
	assert.Len(t, FilterRows(rows, "", false), 3)

	byType := FilterRows(rows, "position", true)
	require.Len(t, byType, 2)
	assert.Equal(t, "/world/ball", byType[0].Path)
	assert.Equal(t, "/hidden", byType[1].Path)

	assert.Len(t, FilterRows(rows, "WHEEL", true), 1)
}

func TestMatchEntities(t *testing.T) {
	scene := loadTestScene(t)
	ctx := context.Background()

	matches := MatchEntities(ctx, scene, map[string]bool{"Position": true}, 0)
	require.Len(t, matches, 1, "inactive subtrees are not matched")
	assert.Equal(t, "/world/ball", matches[0].Path)
	assert.Equal(t, 2, matches[0].Total)
	assert.Equal(t, 2, matches[0].Ready)

	logic := MatchEntities(ctx, scene, map[string]bool{}, ecs.CapLogic)
	assert.Len(t, logic, 2)

	none := MatchEntities(ctx, scene, map[string]bool{"Spin": true, "Position": true}, 0)
	assert.Empty(t, none)
}

func TestCollectTypes(t *testing.T) {
	types := CollectTypes(loadTestScene(t))

	byTag := make(map[string]TypeInfo)
	for _, info := range types {
		byTag[info.Tag] = info
	}
	assert.Equal(t, 2, byTag[components.PositionType].Instances)
	assert.Equal(t, 0, byTag[OverlayType].Instances)
	assert.True(t, byTag[components.MotionType].Capabilities.Has(ecs.CapLogic))
	assert.True(t, byTag[OverlayType].Capabilities.Has(ecs.CapDisplay))
	assert.True(t, byTag[ItemType].Capabilities.Has(ecs.CapDisplay))
}

func TestReflectionCache(t *testing.T) {
	cache := NewReflectionCache()
	fields := cache.GetFields(reflect.TypeFor[components.Motion]())

	require.Len(t, fields, 2)
	assert.Equal(t, "velocity", fields[0].Label)
	assert.True(t, fields[0].IsStruct)
	assert.Equal(t, "bounds", fields[1].Label)
	assert.True(t, fields[1].IsPointer)

	item := cache.GetFields(reflect.TypeFor[ImguiItem]())
	assert.Empty(t, item, "function fields are not inspectable")
}

func TestPerformanceStatsHistory(t *testing.T) {
	ps := NewPerformanceStats(4)
	for range 6 {
		ps.Record(0.010)
	}
	assert.InDelta(t, 10.0, ps.AverageFrameTime(), 1e-4)
	assert.Equal(t, 2, ps.frameIndex)
}

func TestSpawnDebugUI(t *testing.T) {
	scene := loadTestScene(t)
	overlay, err := SpawnDebugUI(context.Background(), scene, PanelBrowser, PanelPerformance)
	require.NoError(t, err)
	require.NotNil(t, overlay)

	assert.Equal(t, []string{PanelBrowser, PanelPerformance}, overlay.Panels)
	assert.Same(t, scene.FindObject("debugui"), overlay.Entity())

	_, err = SpawnDebugUI(context.Background(), loadTestScene(t), "nope")
	assert.ErrorContains(t, err, "unknown debug panel")
}
