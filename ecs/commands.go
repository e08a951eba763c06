package ecs

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
)

// Commands provides a buffer for deferred tree operations that are executed at the
// end of a frame. Component callbacks run concurrently, so structural changes made
// through Commands are safe where direct mutation of shared entities is not.
//
// Flush applies detaches first, then activation changes, then spawns and finally
// deferred functions, each group in the order it was queued.
type Commands struct {
	mu       sync.Mutex
	spawns   []spawnCommand
	detaches []*Entity
	actives  []activeCommand
	defers   []deferCommand
}

func newCommands() *Commands {
	return &Commands{}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	parent *Entity
	name   string
	node   NodeDesc
}

type activeCommand struct {
	entity *Entity
	active bool
}

// Defer queues a function to run after the frame's structural changes.
func (c *Commands) Defer(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues the creation of node as name under parent. A nil parent means the
// scene root. Spawned components are set up by the next refresh.
func (c *Commands) Spawn(parent *Entity, name string, node NodeDesc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spawns = append(c.spawns, spawnCommand{parent: parent, name: name, node: node})
}

// Detach queues the destruction of entity.
func (c *Commands) Detach(entity *Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detaches = append(c.detaches, entity)
}

// SetActive queues an activation change.
func (c *Commands) SetActive(entity *Entity, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actives = append(c.actives, activeCommand{entity: entity, active: active})
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spawns) + len(c.detaches) + len(c.actives) + len(c.defers)
}

// Flush applies all queued commands to scene, resetting the buffer state. Spawns
// below an entity that is no longer attached to scene are dropped.
func (c *Commands) Flush(ctx context.Context, scene *Scene) error {
	c.mu.Lock()
	spawns, detaches, actives, defers := c.spawns, c.detaches, c.actives, c.defers
	c.spawns, c.detaches, c.actives, c.defers = nil, nil, nil, nil
	c.mu.Unlock()

	if scene != nil {
		for _, e := range detaches {
			if e.Parent() == nil {
				continue
			}
			if err := scene.Detach(e); err != nil {
				return eris.Wrap(err, "failed to flush detach")
			}
		}

		for _, cmd := range actives {
			cmd.entity.SetActive(cmd.active)
		}

		for _, cmd := range spawns {
			parent := cmd.parent
			if parent == nil {
				parent = scene.Root()
			}
			if parent.Root() != scene.Root() {
				continue
			}
			if _, err := scene.CreateChild(ctx, cmd.node, cmd.name, parent); err != nil {
				return eris.Wrap(err, "failed to flush spawn")
			}
		}
	}

	for _, df := range defers {
		df.fn()
	}
	return nil
}
