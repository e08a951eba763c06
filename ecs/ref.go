package ecs

import (
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Ref is a reference to a component on another entity, written "entity.Type" in a
// descriptor. The entity part is looked up by name anywhere in the scene; the split
// happens at the last dot, so entity names may themselves contain dots.
//
// A Ref is resolved once, typically during Setup, and the target is cached.
type Ref[T any] struct {
	Entity string
	Type   string

	target   T
	resolved bool
}

// ParseRef parses an "entity.Type" reference.
func ParseRef[T any](s string) (Ref[T], error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return Ref[T]{}, eris.Wrapf(ErrBadReference, "%q", s)
	}
	return Ref[T]{Entity: s[:i], Type: s[i+1:]}, nil
}

func (r Ref[T]) String() string {
	if r.IsZero() {
		return ""
	}
	return r.Entity + "." + r.Type
}

// IsZero reports whether the reference was left empty.
func (r Ref[T]) IsZero() bool {
	return r.Entity == "" && r.Type == ""
}

func (r *Ref[T]) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return eris.Wrapf(ErrBadReference, "line %d: expected a string", value.Line)
	}
	if s == "" {
		*r = Ref[T]{}
		return nil
	}
	parsed, err := ParseRef[T](s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r Ref[T]) MarshalYAML() (any, error) {
	return r.String(), nil
}

// Resolve finds the referenced component in scene and caches it.
func (r *Ref[T]) Resolve(scene *Scene) (T, error) {
	if r.resolved {
		return r.target, nil
	}
	var zero T
	if scene == nil {
		return zero, eris.Wrapf(ErrNoScene, "resolving %s", r)
	}

	c, err := scene.lookup(r.Entity, r.Type)
	if err != nil {
		return zero, err
	}
	target, ok := c.(T)
	if !ok {
		return zero, eris.Wrapf(ErrUnresolvedReference, "%s has type %T", r, c)
	}
	r.target = target
	r.resolved = true
	return target, nil
}

// Get returns the cached target, or the zero value before a successful Resolve.
func (r *Ref[T]) Get() T {
	return r.target
}

func (r *Ref[T]) Resolved() bool {
	return r.resolved
}
