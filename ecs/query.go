package ecs

import (
	"context"
	"iter"
	"reflect"
)

// Query collects the components of the active tree that satisfy T, in walk order.
// Only enabled components that completed Setup are matched.
//
// Query fields on a registered system are initialized by the Scheduler; standalone
// queries are created with NewQuery.
type Query[T any] struct {
	caps Capability

	cachedEntities   []*Entity
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a Query. When T is one of the capability interfaces, components
// are prefiltered by the capability resolved at registration.
func NewQuery[T any]() *Query[T] {
	q := &Query[T]{}
	q.Init()
	return q
}

// Init resets the Query. Called by the Scheduler during system registration.
func (q *Query[T]) Init() {
	q.caps = capabilityFor(reflect.TypeFor[T]())
	q.cacheValid = false
}

func capabilityFor(t reflect.Type) Capability {
	switch t {
	case reflect.TypeFor[Updater]():
		return CapLogic
	case reflect.TypeFor[Displayer]():
		return CapDisplay
	case reflect.TypeFor[Renderer]():
		return CapCamera
	}
	return 0
}

// Execute rebuilds the caches for this frame.
func (q *Query[T]) Execute(ctx context.Context, scene *Scene) error {
	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]
	q.cacheValid = false

	if scene == nil {
		q.cacheValid = true
		return nil
	}

	err := scene.Walk(ctx, func(_ context.Context, e *Entity, _ string) error {
		for _, c := range e.componentList() {
			b := c.Base()
			if !b.Enabled() || !b.Ready() || !b.Capabilities().Has(q.caps) {
				continue
			}
			item, ok := c.(T)
			if !ok {
				continue
			}
			q.cachedEntities = append(q.cachedEntities, e)
			q.cachedComponents = append(q.cachedComponents, item)
		}
		return nil
	})
	if err != nil {
		return err
	}

	q.cacheValid = true
	return nil
}

// Len returns the number of matches of the last Execute.
func (q *Query[T]) Len() int {
	return len(q.cachedComponents)
}

// Items returns the matched components of the last Execute.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Items() []T {
	if !q.cacheValid {
		panic("Query.Items() called before Query.Execute()")
	}
	return q.cachedComponents
}

// Iter returns an iterator over owning entities and components.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Iter() iter.Seq2[*Entity, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(*Entity, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over components only.
// Panics if Execute() has not been called this frame.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}
