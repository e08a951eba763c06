package ecs

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// Entity is a node in the scene tree. It has no global id; it is identified by the
// name it was registered under in its parent. An entity owns its children and at most
// one component per type tag.
type Entity struct {
	mu sync.RWMutex

	name   string
	index  uint64
	parent *Entity

	scene    *Scene
	registry *ComponentRegistry

	inactive atomic.Bool

	nextIndex uint64
	children  map[string]*Entity
	slots     *intmap.Map[uint64, childSlot]
	order     []uint64

	components map[string]Component
}

// NewEntity creates a detached entity that builds its components from the given
// registry. It is not bound to any scene until attached below a scene entity.
func NewEntity(registry *ComponentRegistry) *Entity {
	return newEntity(registry, nil)
}

func newEntity(registry *ComponentRegistry, scene *Scene) *Entity {
	return &Entity{
		scene:      scene,
		registry:   registry,
		children:   make(map[string]*Entity),
		slots:      intmap.New[uint64, childSlot](8),
		components: make(map[string]Component),
	}
}

// Name returns the name the entity is registered under in its parent.
func (e *Entity) Name() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.name
}

// Parent returns the owning entity, or nil for a root or detached entity.
func (e *Entity) Parent() *Entity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parent
}

// Scene returns the scene the entity belongs to, if any.
func (e *Entity) Scene() *Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scene
}

// Active reports whether visiting systems should descend into this entity.
func (e *Entity) Active() bool {
	return !e.inactive.Load()
}

// SetActive toggles the entity and, implicitly, its whole subtree.
func (e *Entity) SetActive(active bool) {
	e.inactive.Store(!active)
}

// Root returns the topmost ancestor.
func (e *Entity) Root() *Entity {
	root := e
	for p := root.Parent(); p != nil; p = root.Parent() {
		root = p
	}
	return root
}

// Path returns the slash separated registration names from the root down to e.
func (e *Entity) Path() string {
	var names []string
	for cur := e; cur != nil; cur = cur.Parent() {
		if name := cur.Name(); name != "" {
			names = append(names, name)
		}
	}
	slices.Reverse(names)
	return "/" + strings.Join(names, "/")
}

func (e *Entity) isDescendantOf(ancestor *Entity) bool {
	for cur := e.Parent(); cur != nil; cur = cur.Parent() {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// AddChild attaches child under name. It fails if child already has a parent, if the
// name is taken among the current children, or if the attachment would form a cycle.
// Children receive ascending insertion indices that determine visiting order.
func (e *Entity) AddChild(name string, child *Entity) error {
	if child == nil {
		return eris.Errorf("cannot attach nil child %q", name)
	}
	if child == e || e.isDescendantOf(child) {
		return eris.Wrapf(ErrCycle, "attaching %q below %s", name, e.Path())
	}

	child.mu.Lock()
	if parent := child.parent; parent != nil {
		current := child.name
		child.mu.Unlock()
		return eris.Wrapf(ErrAlreadyParented, "%q is a child of %s", current, parent.Path())
	}

	e.mu.Lock()
	if _, taken := e.children[name]; taken {
		e.mu.Unlock()
		child.mu.Unlock()
		return eris.Wrapf(ErrDuplicateChild, "%q below %s", name, e.Path())
	}
	idx := e.nextIndex
	e.nextIndex++
	e.children[name] = child
	e.slots.Put(idx, childSlot{name: name, entity: child})
	e.order = append(e.order, idx)
	scene, registry := e.scene, e.registry
	e.mu.Unlock()

	child.parent = e
	child.name = name
	child.index = idx
	needsScene := child.scene == nil && scene != nil
	child.mu.Unlock()

	if needsScene {
		child.adopt(scene, registry)
	}
	return nil
}

// adopt binds a detached subtree to a scene. Entities are locked one at a time,
// never while holding another entity's lock.
func (e *Entity) adopt(scene *Scene, registry *ComponentRegistry) {
	e.mu.Lock()
	if e.scene != nil {
		e.mu.Unlock()
		return
	}
	e.scene = scene
	if e.registry == nil {
		e.registry = registry
	}
	e.mu.Unlock()

	for _, slot := range e.childList() {
		slot.entity.adopt(scene, registry)
	}
}

// RemoveChild detaches child. It fails if child is not parented to e. A detached
// entity is unreachable by every system; destroying an entity means detaching it.
func (e *Entity) RemoveChild(child *Entity) error {
	if child == nil {
		return eris.New("cannot remove nil child")
	}

	child.mu.Lock()
	defer child.mu.Unlock()

	if child.parent != e {
		return eris.Wrapf(ErrNotParentedHere, "%q is not a child of %s", child.name, e.Path())
	}

	e.mu.Lock()
	delete(e.children, child.name)
	e.slots.Del(child.index)
	if i := slices.Index(e.order, child.index); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
	e.mu.Unlock()

	child.parent = nil
	child.name = ""
	child.index = 0
	return nil
}

// GetChild returns the direct child registered under name, or nil.
func (e *Entity) GetChild(name string) *Entity {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.children[name]
}

// ChildCount returns the number of direct children.
func (e *Entity) ChildCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}

type childSlot struct {
	name   string
	entity *Entity
}

// childList snapshots the children in ascending insertion order.
func (e *Entity) childList() []childSlot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := make([]childSlot, 0, len(e.order))
	for _, idx := range e.order {
		if slot, ok := e.slots.Get(idx); ok {
			list = append(list, slot)
		}
	}
	return list
}

// Children returns the direct children in ascending insertion order.
func (e *Entity) Children() []*Entity {
	list := e.childList()
	children := make([]*Entity, len(list))
	for i, slot := range list {
		children[i] = slot.entity
	}
	return children
}

// WalkChildren calls fn for every direct child in ascending insertion order. The set
// of children is captured before the first call; fn may modify the tree.
func (e *Entity) WalkChildren(fn func(child *Entity, name string)) {
	for _, slot := range e.childList() {
		fn(slot.entity, slot.name)
	}
}

// AddComponent constructs the component registered under tag, stores it (replacing
// any component with the same tag), runs its Create phase and then queues it for
// Setup on the owning scene. When Create fails the component is removed again.
func (e *Entity) AddComponent(ctx context.Context, tag string, desc Descriptor) (Component, error) {
	e.mu.RLock()
	registry, scene := e.registry, e.scene
	e.mu.RUnlock()

	if registry == nil {
		return nil, eris.Wrapf(ErrNoRegistry, "adding %s to %s", tag, e.Path())
	}

	c, err := registry.Create(tag, e)
	if err != nil {
		return nil, eris.Wrapf(err, "adding component to %s", e.Path())
	}

	e.mu.Lock()
	prev := e.components[tag]
	e.components[tag] = c
	e.mu.Unlock()

	if prev != nil && scene != nil {
		scene.forget(prev)
	}

	if err := c.Create(ctx, desc); err != nil {
		e.mu.Lock()
		if e.components[tag] == c {
			delete(e.components, tag)
		}
		e.mu.Unlock()
		return nil, eris.Wrapf(err, "create of %s on %s failed", tag, e.Path())
	}
	c.Base().setState(StateCreated)

	if scene != nil {
		scene.onComponentCreated(c, desc)
	}
	return c, nil
}

// GetComponent returns the component stored under tag, or nil. Descendants are not searched.
func (e *Entity) GetComponent(tag string) Component {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.components[tag]
}

// RemoveComponent removes and returns the component stored under tag.
func (e *Entity) RemoveComponent(tag string) Component {
	e.mu.Lock()
	c := e.components[tag]
	delete(e.components, tag)
	scene := e.scene
	e.mu.Unlock()

	if c != nil && scene != nil {
		scene.forget(c)
	}
	return c
}

// WalkComponents calls fn for every attached component in no particular order.
func (e *Entity) WalkComponents(fn func(tag string, c Component)) {
	e.mu.RLock()
	components := make(map[string]Component, len(e.components))
	for tag, c := range e.components {
		components[tag] = c
	}
	e.mu.RUnlock()

	for tag, c := range components {
		fn(tag, c)
	}
}

// componentList snapshots the attached components ordered by tag.
func (e *Entity) componentList() []Component {
	e.mu.RLock()
	tags := make([]string, 0, len(e.components))
	for tag := range e.components {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	list := make([]Component, len(tags))
	for i, tag := range tags {
		list[i] = e.components[tag]
	}
	e.mu.RUnlock()
	return list
}

// GetComponent returns the component stored under tag on e converted to T.
func GetComponent[T any](e *Entity, tag string) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	c, ok := e.GetComponent(tag).(T)
	if !ok {
		return zero, false
	}
	return c, true
}
