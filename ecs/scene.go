package ecs

import (
	"context"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// WalkFunc is called for every visited entity. name is the registration name in the
// parent, empty for the root. Returning ErrSkipChildren prunes the entity's subtree;
// any other error aborts the walk.
type WalkFunc func(ctx context.Context, e *Entity, name string) error

type SceneOption func(*Scene)

// WithMaxParallel bounds how many setups of one refresh pass run at once. Zero or
// less means no bound.
func WithMaxParallel(n int) SceneOption {
	return func(s *Scene) { s.maxParallel = n }
}

// WithMaxSetupPasses makes Refresh fail with ErrSetupDiverged after n passes.
// Zero means Refresh runs until the queue is empty.
func WithMaxSetupPasses(n int) SceneOption {
	return func(s *Scene) { s.maxSetupPasses = n }
}

func WithLogger(l zerolog.Logger) SceneOption {
	return func(s *Scene) { s.log = l }
}

type pendingSetup struct {
	seq  uint64
	desc Descriptor
}

// Scene owns the root entity and the queue of components that were created but
// have not yet completed Setup.
type Scene struct {
	registry *ComponentRegistry
	root     *Entity

	mu      sync.Mutex
	seq     uint64
	pending map[Component]pendingSetup

	maxParallel    int
	maxSetupPasses int
	log            zerolog.Logger
}

func NewScene(registry *ComponentRegistry, opts ...SceneOption) *Scene {
	s := &Scene{
		registry: registry,
		pending:  make(map[Component]pendingSetup),
		log:      Logger("scene"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = s.NewEntity()
	return s
}

// NewEntity creates a detached entity bound to this scene.
func (s *Scene) NewEntity() *Entity {
	return newEntity(s.registry, s)
}

func (s *Scene) Root() *Entity { return s.root }

func (s *Scene) Registry() *ComponentRegistry { return s.registry }

// Create instantiates every top-level node of desc under the root, in order. Setup
// is not run; call Refresh for that.
func (s *Scene) Create(ctx context.Context, desc Description) error {
	for _, named := range desc {
		if _, err := s.CreateChild(ctx, named.Node, named.Name, s.root); err != nil {
			return err
		}
	}
	s.log.Info().Int("entities", desc.Len()).Int("pending", s.Pending()).Msg("scene created")
	return nil
}

// CreateChild instantiates node as a new entity named name under parent. Children
// are built before the node's own components, each in description order.
func (s *Scene) CreateChild(ctx context.Context, node NodeDesc, name string, parent *Entity) (*Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if parent == nil {
		parent = s.root
	}

	e := s.NewEntity()
	if err := parent.AddChild(name, e); err != nil {
		return nil, eris.Wrapf(err, "failed to attach %q", name)
	}

	for _, child := range node.Children {
		if _, err := s.CreateChild(ctx, child.Node, child.Name, e); err != nil {
			return nil, err
		}
	}
	for _, comp := range node.Components {
		if _, err := e.AddComponent(ctx, comp.Type, comp.Descriptor); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// onComponentCreated queues c for Setup. A component is queued at most once.
func (s *Scene) onComponentCreated(c Component, desc Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, queued := s.pending[c]; queued {
		return
	}
	s.pending[c] = pendingSetup{seq: s.seq, desc: desc}
	s.seq++
}

func (s *Scene) forget(c Component) {
	s.mu.Lock()
	delete(s.pending, c)
	s.mu.Unlock()
}

func (s *Scene) forgetSubtree(e *Entity) {
	_ = walkEntity(context.Background(), e, "", func(_ context.Context, e *Entity, _ string) error {
		for _, c := range e.componentList() {
			s.forget(c)
		}
		return nil
	}, false)
}

// Pending returns the number of components awaiting Setup.
func (s *Scene) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

type setupItem struct {
	c    Component
	desc Descriptor
}

func (s *Scene) snapshotPending() []setupItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	type queued struct {
		setupItem
		seq uint64
	}
	list := make([]queued, 0, len(s.pending))
	for c, p := range s.pending {
		list = append(list, queued{setupItem{c, p.desc}, p.seq})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })

	batch := make([]setupItem, len(list))
	for i, q := range list {
		batch[i] = q.setupItem
	}
	return batch
}

// Refresh runs Setup for every queued component until the queue is empty. Each pass
// takes the queue as it stands, issues all of its setups concurrently and waits for
// them together. Components created during a pass are set up in a later pass.
//
// The first failing setup cancels the pass context and its error is returned; the
// components that did complete are Ready and the rest stay queued.
func (s *Scene) Refresh(ctx context.Context) error {
	for pass := 1; ; pass++ {
		batch := s.snapshotPending()
		if len(batch) == 0 {
			return nil
		}
		if s.maxSetupPasses > 0 && pass > s.maxSetupPasses {
			return eris.Wrapf(ErrSetupDiverged, "%d components still pending after %d passes", len(batch), s.maxSetupPasses)
		}

		g, gctx := errgroup.WithContext(ctx)
		if s.maxParallel > 0 {
			g.SetLimit(s.maxParallel)
		}
		for _, item := range batch {
			g.Go(func() error {
				b := item.c.Base()
				if err := item.c.Setup(gctx, item.desc); err != nil {
					return eris.Wrapf(err, "setup of %s on %s failed", b.Type(), b.Entity().Path())
				}
				b.setState(StateReady)
				s.forget(item.c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		s.log.Debug().Int("pass", pass).Int("components", len(batch)).Msg("setup pass complete")
	}
}

// Walk visits the active part of the tree depth-first, parent before children,
// children in insertion order. The root is visited first with an empty name.
func (s *Scene) Walk(ctx context.Context, fn WalkFunc) error {
	return walkEntity(ctx, s.root, "", fn, true)
}

// WalkAll is Walk including inactive entities.
func (s *Scene) WalkAll(ctx context.Context, fn WalkFunc) error {
	return walkEntity(ctx, s.root, "", fn, false)
}

func walkEntity(ctx context.Context, e *Entity, name string, fn WalkFunc, onlyActive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if onlyActive && !e.Active() {
		return nil
	}
	if err := fn(ctx, e, name); err != nil {
		if eris.Is(err, ErrSkipChildren) {
			return nil
		}
		return err
	}
	for _, slot := range e.childList() {
		if err := walkEntity(ctx, slot.entity, slot.name, fn, onlyActive); err != nil {
			return err
		}
	}
	return nil
}

// FindObject returns the first entity registered under name in depth-first order,
// including inactive subtrees. The root is never matched.
func (s *Scene) FindObject(name string) *Entity {
	return findIn(s.root, name)
}

func findIn(e *Entity, name string) *Entity {
	for _, slot := range e.childList() {
		if slot.name == name {
			return slot.entity
		}
		if found := findIn(slot.entity, name); found != nil {
			return found
		}
	}
	return nil
}

// Lookup resolves an "entity.Type" path to a component.
func (s *Scene) Lookup(path string) (Component, error) {
	ref, err := ParseRef[Component](path)
	if err != nil {
		return nil, err
	}
	return s.lookup(ref.Entity, ref.Type)
}

func (s *Scene) lookup(entity, tag string) (Component, error) {
	e := s.FindObject(entity)
	if e == nil {
		return nil, eris.Wrapf(ErrUnresolvedReference, "no entity named %q", entity)
	}
	c := e.GetComponent(tag)
	if c == nil {
		return nil, eris.Wrapf(ErrUnresolvedReference, "%s has no %s component", e.Path(), tag)
	}
	return c, nil
}

// Detach detaches e from its parent and drops its subtree's pending setups.
func (s *Scene) Detach(e *Entity) error {
	if e == s.root {
		return eris.New("cannot destroy the scene root")
	}
	parent := e.Parent()
	if parent == nil {
		return eris.Wrapf(ErrNotParentedHere, "%s is already detached", e.Path())
	}
	if err := parent.RemoveChild(e); err != nil {
		return err
	}
	s.forgetSubtree(e)
	return nil
}

// Teardown disables every component, detaches every top-level entity and empties
// the setup queue. The scene is unusable afterwards.
func (s *Scene) Teardown() {
	_ = s.WalkAll(context.Background(), func(_ context.Context, e *Entity, _ string) error {
		for _, c := range e.componentList() {
			c.Base().SetEnabled(false)
		}
		return nil
	})
	for _, child := range s.root.Children() {
		_ = s.root.RemoveChild(child)
	}

	s.mu.Lock()
	clear(s.pending)
	s.mu.Unlock()

	s.log.Debug().Msg("scene torn down")
}
