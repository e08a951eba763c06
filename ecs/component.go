package ecs

import (
	"context"
	"strings"
	"sync/atomic"
)

// Component is a unit of data and behavior attached to an entity under a type tag.
// Concrete components embed BaseComponent, which supplies the Base accessor and
// no-op lifecycle phases.
//
// Construction is two-phase. Create runs immediately when the component is attached
// and must only touch the component itself. Setup runs later, during a scene refresh,
// once every sibling and cross-entity component created in the same batch exists.
//
// Update, Display and Render run concurrently with the callbacks of other components
// and must be safe for concurrent use unless the system's MaxParallel is 1.
type Component interface {
	Create(ctx context.Context, desc Descriptor) error
	Setup(ctx context.Context, desc Descriptor) error
	Base() *BaseComponent
}

// Updater is the logic capability, invoked once per frame by the LogicSystem.
type Updater interface {
	Component
	Update(frame *UpdateFrame) error
}

// Displayer is the display capability, invoked once per frame by the DisplaySystem.
type Displayer interface {
	Component
	Display(frame *UpdateFrame) error
}

// Renderer is the camera capability. Renders run after every display of the frame.
type Renderer interface {
	Component
	Render(frame *UpdateFrame) error
}

// EnableHandler is notified when a disabled component becomes enabled.
type EnableHandler interface {
	OnEnabled()
}

// DisableHandler is notified when an enabled component becomes disabled.
type DisableHandler interface {
	OnDisabled()
}

// Capability is the set of per-frame roles a component type fulfils. It is resolved
// once, when the type is registered.
type Capability uint8

const (
	CapLogic Capability = 1 << iota
	CapDisplay
	CapCamera
)

// Has reports whether every bit of other is set.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	var parts []string
	if c.Has(CapLogic) {
		parts = append(parts, "logic")
	}
	if c.Has(CapDisplay) {
		parts = append(parts, "display")
	}
	if c.Has(CapCamera) {
		parts = append(parts, "camera")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// LifecycleState tracks how far a component has progressed through construction.
type LifecycleState int32

const (
	StateConstructed LifecycleState = iota
	StateCreated
	StateReady
)

func (s LifecycleState) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateCreated:
		return "created"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// BaseComponent carries the bookkeeping shared by every component. The registry
// stamps the owner, the tag and the capabilities when it constructs a component.
type BaseComponent struct {
	self     Component
	entity   *Entity
	tag      string
	caps     Capability
	disabled atomic.Bool
	state    atomic.Int32
}

func (b *BaseComponent) Create(ctx context.Context, desc Descriptor) error { return nil }

func (b *BaseComponent) Setup(ctx context.Context, desc Descriptor) error { return nil }

func (b *BaseComponent) Base() *BaseComponent { return b }

// Entity returns the owning entity.
func (b *BaseComponent) Entity() *Entity { return b.entity }

// Scene returns the scene of the owning entity, or nil.
func (b *BaseComponent) Scene() *Scene {
	if b.entity == nil {
		return nil
	}
	return b.entity.Scene()
}

// Type returns the tag the component was registered under.
func (b *BaseComponent) Type() string { return b.tag }

func (b *BaseComponent) Capabilities() Capability { return b.caps }

func (b *BaseComponent) State() LifecycleState {
	return LifecycleState(b.state.Load())
}

// Ready reports whether Setup has completed.
func (b *BaseComponent) Ready() bool {
	return b.State() == StateReady
}

func (b *BaseComponent) setState(s LifecycleState) {
	b.state.Store(int32(s))
}

func (b *BaseComponent) Enabled() bool {
	return !b.disabled.Load()
}

// SetEnabled flips the enabled flag. The EnableHandler and DisableHandler hooks fire
// only on an actual transition.
func (b *BaseComponent) SetEnabled(enabled bool) {
	if !b.disabled.CompareAndSwap(enabled, !enabled) {
		return
	}
	if enabled {
		if h, ok := b.self.(EnableHandler); ok {
			h.OnEnabled()
		}
		return
	}
	if h, ok := b.self.(DisableHandler); ok {
		h.OnDisabled()
	}
}
