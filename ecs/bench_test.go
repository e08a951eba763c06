package ecs_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/plus3/kiln/ecs"
)

// benchScene builds groups entities, each with ten children carrying a Ticker and
// a Value, and completes their setup.
func benchScene(b *testing.B, groups int) *ecs.Scene {
	b.Helper()
	ctx := context.Background()
	scene := ecs.NewScene(newTestRegistry(nil))

	leaf := ecs.NodeDesc{Components: []ecs.ComponentDesc{
		{Type: "Ticker"},
		{Type: "Value", Descriptor: ecs.MustDescriptor(map[string]int{"n": 1})},
	}}
	for i := 0; i < groups; i++ {
		var node ecs.NodeDesc
		for j := 0; j < 10; j++ {
			node.Children = append(node.Children, ecs.NamedNode{Name: fmt.Sprintf("leaf%d", j), Node: leaf})
		}
		if _, err := scene.CreateChild(ctx, node, fmt.Sprintf("group%d", i), nil); err != nil {
			b.Fatal(err)
		}
	}
	if err := scene.Refresh(ctx); err != nil {
		b.Fatal(err)
	}
	return scene
}

func BenchmarkAddChild(b *testing.B) {
	registry := newTestRegistry(nil)
	parent := ecs.NewEntity(registry)
	names := make([]string, b.N)
	for i := range names {
		names[i] = fmt.Sprintf("child%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := parent.AddChild(names[i], ecs.NewEntity(registry)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWalk(b *testing.B) {
	scene := benchScene(b, 100)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count := 0
		_ = scene.Walk(ctx, func(context.Context, *ecs.Entity, string) error {
			count++
			return nil
		})
	}
}

func BenchmarkQueryExecute(b *testing.B) {
	scene := benchScene(b, 100)
	ctx := context.Background()
	query := ecs.NewQuery[ecs.Updater]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := query.Execute(ctx, scene); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindObject(b *testing.B) {
	scene := benchScene(b, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = scene.FindObject("group99")
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	for _, parallel := range []int{0, 1, 8} {
		b.Run(fmt.Sprintf("parallel=%d", parallel), func(b *testing.B) {
			scene := benchScene(b, 100)
			cfg := ecs.DefaultConfig()
			cfg.MaxParallel = parallel

			stage := ecs.NewStage(scene.Registry(), cfg)
			stage.Swap(scene)
			scheduler := ecs.NewScheduler(stage, cfg)
			scheduler.Register(&ecs.MaintenanceSystem{})
			scheduler.Register(&ecs.LogicSystem{MaxParallel: parallel})
			scheduler.Register(&ecs.DisplaySystem{MaxParallel: parallel})

			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := scheduler.Once(ctx, 1.0/60.0); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
