package ecs

import (
	"reflect"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type componentEntry struct {
	tag  string
	typ  reflect.Type
	caps Capability
	new  func() Component
}

// ComponentRegistry maps type tags to component constructors.
type ComponentRegistry struct {
	mu      sync.RWMutex
	entries map[string]componentEntry
	log     zerolog.Logger
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		entries: make(map[string]componentEntry),
		log:     Logger("registry"),
	}
}

// RegisterComponent registers T under tag. Capabilities are taken from the method
// set of *T. Registering a tag twice replaces the earlier entry.
func RegisterComponent[T any, PT interface {
	*T
	Component
}](r *ComponentRegistry, tag string) {
	RegisterComponentFunc[T, PT](r, tag, func() PT { return PT(new(T)) })
}

// RegisterComponentFunc registers T under tag with a custom constructor.
func RegisterComponentFunc[T any, PT interface {
	*T
	Component
}](r *ComponentRegistry, tag string, ctor func() PT) {
	entry := componentEntry{
		tag:  tag,
		typ:  reflect.TypeFor[T](),
		caps: capabilitiesOf[PT](),
		new:  func() Component { return ctor() },
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[tag]; exists {
		r.log.Warn().Str("type", tag).Msg("component type re-registered")
	}
	r.entries[tag] = entry
	r.log.Debug().Str("type", tag).Stringer("capabilities", entry.caps).Msg("component type registered")
}

func capabilitiesOf[PT Component]() Capability {
	var probe any = *new(PT)
	var caps Capability
	if _, ok := probe.(Updater); ok {
		caps |= CapLogic
	}
	if _, ok := probe.(Displayer); ok {
		caps |= CapDisplay
	}
	if _, ok := probe.(Renderer); ok {
		caps |= CapCamera
	}
	return caps
}

// Create constructs a fresh component for tag, owned by owner. Unknown tags are
// logged and reported as ErrUnknownComponent.
func (r *ComponentRegistry) Create(tag string, owner *Entity) (Component, error) {
	r.mu.RLock()
	entry, ok := r.entries[tag]
	r.mu.RUnlock()

	if !ok {
		r.log.Error().Str("type", tag).Msg("unknown component type")
		return nil, eris.Wrapf(ErrUnknownComponent, "%q", tag)
	}

	c := entry.new()
	b := c.Base()
	b.self = c
	b.entity = owner
	b.tag = tag
	b.caps = entry.caps
	b.setState(StateConstructed)
	return c, nil
}

// Tags returns every registered tag in sorted order.
func (r *ComponentRegistry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Capabilities returns the capability set resolved for tag.
func (r *ComponentRegistry) Capabilities(tag string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[tag]
	return entry.caps, ok
}

// Type returns the Go type registered under tag.
func (r *ComponentRegistry) Type(tag string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[tag]
	return entry.typ, ok
}
