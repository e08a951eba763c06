package ecs_test

import (
	"context"
	"testing"

	"github.com/plus3/kiln/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry(nil)
	scene, err := loadScene(registry, `
one: {components: {Ticker: {}, Value: {}}}
two:
  components: {Ticker: {}}
  children:
    three: {components: {Ticker: {}}}
four: {components: {Ticker: {}}}
`)
	require.NoError(t, err)

	t.Run("panics before execute", func(t *testing.T) {
		q := ecs.NewQuery[ecs.Updater]()
		assert.Panics(t, func() { q.Items() })
		assert.Panics(t, func() { q.Values() })
	})

	t.Run("only ready components", func(t *testing.T) {
		q := ecs.NewQuery[ecs.Updater]()
		require.NoError(t, q.Execute(ctx, scene))
		assert.Equal(t, 0, q.Len())
	})

	require.NoError(t, scene.Refresh(ctx))

	t.Run("walk order", func(t *testing.T) {
		q := ecs.NewQuery[ecs.Updater]()
		require.NoError(t, q.Execute(ctx, scene))

		var names []string
		for e := range q.Iter() {
			names = append(names, e.Name())
		}
		assert.Equal(t, []string{"one", "two", "three", "four"}, names)
	})

	t.Run("disabled and inactive are skipped", func(t *testing.T) {
		ticker, _ := ecs.GetComponent[*Ticker](scene.FindObject("one"), "Ticker")
		ticker.SetEnabled(false)
		scene.FindObject("two").SetActive(false)
		defer ticker.SetEnabled(true)
		defer scene.FindObject("two").SetActive(true)

		q := ecs.NewQuery[*Ticker]()
		require.NoError(t, q.Execute(ctx, scene))
		require.Equal(t, 1, q.Len())
		assert.Equal(t, "four", q.Items()[0].Entity().Name())
	})

	t.Run("concrete types", func(t *testing.T) {
		q := ecs.NewQuery[*Value]()
		require.NoError(t, q.Execute(ctx, scene))
		count := 0
		for range q.Values() {
			count++
		}
		assert.Equal(t, 1, count)
	})

	t.Run("nil scene", func(t *testing.T) {
		q := ecs.NewQuery[ecs.Updater]()
		require.NoError(t, q.Execute(ctx, nil))
		assert.Empty(t, q.Items())
	})
}
