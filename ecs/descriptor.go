package ecs

import (
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Descriptor is the opaque, component-type-specific configuration a component is
// created and set up from. Both construction phases receive the same descriptor.
type Descriptor struct {
	node *yaml.Node
}

// NewDescriptor wraps an already parsed YAML node.
func NewDescriptor(node *yaml.Node) Descriptor {
	return Descriptor{node: node}
}

// DescriptorOf encodes v into a descriptor.
func DescriptorOf(v any) (Descriptor, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return Descriptor{}, eris.Wrap(err, "failed to encode descriptor")
	}
	return Descriptor{node: &node}, nil
}

// MustDescriptor is DescriptorOf that panics on failure.
func MustDescriptor(v any) Descriptor {
	d, err := DescriptorOf(v)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether the descriptor carries no configuration.
func (d Descriptor) IsZero() bool {
	if d.node == nil || d.node.Kind == 0 {
		return true
	}
	return d.node.Kind == yaml.ScalarNode && d.node.Tag == "!!null"
}

// Decode unmarshals the descriptor into v. A zero descriptor leaves v untouched.
func (d Descriptor) Decode(v any) error {
	if d.IsZero() {
		return nil
	}
	if err := d.node.Decode(v); err != nil {
		return eris.Wrap(err, "failed to decode descriptor")
	}
	return nil
}

// Node exposes the underlying YAML node.
func (d Descriptor) Node() *yaml.Node {
	return d.node
}

func (d *Descriptor) UnmarshalYAML(value *yaml.Node) error {
	d.node = value
	return nil
}

func (d Descriptor) MarshalYAML() (any, error) {
	if d.node == nil {
		return nil, nil
	}
	return d.node, nil
}
