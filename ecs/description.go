package ecs

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Description is an ordered list of named node descriptions. Order is significant:
// entities are attached, and later visited, in the order they appear.
type Description []NamedNode

type NamedNode struct {
	Name string
	Node NodeDesc
}

// NodeDesc describes one entity: its children and its components, both in order.
type NodeDesc struct {
	Children   Description
	Components []ComponentDesc
}

type ComponentDesc struct {
	Type       string
	Descriptor Descriptor
}

// Len returns the number of entities described, recursively.
func (d Description) Len() int {
	n := 0
	for _, node := range d {
		n += 1 + node.Node.Children.Len()
	}
	return n
}

// UnmarshalYAML reads a mapping of entity name to node description, keeping the
// document order of the keys.
func (d *Description) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*d = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return eris.Errorf("line %d: expected a mapping of entity names", value.Line)
	}

	out := make(Description, 0, len(value.Content)/2)
	seen := make(map[string]struct{}, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if _, dup := seen[key.Value]; dup {
			return eris.Wrapf(ErrDuplicateChild, "line %d: %q", key.Line, key.Value)
		}
		seen[key.Value] = struct{}{}

		var node NodeDesc
		if err := val.Decode(&node); err != nil {
			return eris.Wrapf(err, "entity %q", key.Value)
		}
		out = append(out, NamedNode{Name: key.Value, Node: node})
	}
	*d = out
	return nil
}

func (n *NodeDesc) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return eris.Errorf("line %d: expected a node mapping", value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		switch key.Value {
		case "children":
			if err := val.Decode(&n.Children); err != nil {
				return err
			}
		case "components":
			components, err := decodeComponents(val)
			if err != nil {
				return err
			}
			n.Components = components
		default:
			return eris.Errorf("line %d: unknown node key %q", key.Line, key.Value)
		}
	}
	return nil
}

func decodeComponents(value *yaml.Node) ([]ComponentDesc, error) {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil, nil
	}
	if value.Kind != yaml.MappingNode {
		return nil, eris.Errorf("line %d: expected a mapping of component types", value.Line)
	}

	components := make([]ComponentDesc, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		components = append(components, ComponentDesc{Type: key.Value, Descriptor: NewDescriptor(val)})
	}
	return components, nil
}

// MarshalYAML writes the description back as an ordered mapping.
func (d Description) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, named := range d {
		node, err := named.Node.toYAML()
		if err != nil {
			return nil, err
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: named.Name}, node)
	}
	return root, nil
}

func (n NodeDesc) toYAML() (*yaml.Node, error) {
	out := &yaml.Node{Kind: yaml.MappingNode}
	if len(n.Components) > 0 {
		components := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range n.Components {
			val := c.Descriptor.Node()
			if val == nil {
				val = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			}
			components.Content = append(components.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c.Type}, val)
		}
		out.Content = append(out.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "components"}, components)
	}
	if len(n.Children) > 0 {
		children, err := n.Children.MarshalYAML()
		if err != nil {
			return nil, err
		}
		out.Content = append(out.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "children"}, children.(*yaml.Node))
	}
	return out, nil
}

// ParseDescription parses a YAML or JSON scene description.
func ParseDescription(data []byte) (Description, error) {
	return LoadDescription(bytes.NewReader(data))
}

// LoadDescription reads a YAML or JSON scene description. An empty document yields
// an empty description.
func LoadDescription(r io.Reader) (Description, error) {
	var desc Description
	if err := yaml.NewDecoder(r).Decode(&desc); err != nil {
		if errors.Is(err, io.EOF) {
			return Description{}, nil
		}
		return nil, eris.Wrap(err, "failed to parse scene description")
	}
	return desc, nil
}

// LoadDescriptionFile reads a scene description from path.
func LoadDescriptionFile(path string) (Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open scene %s", path)
	}
	defer f.Close()

	desc, err := LoadDescription(f)
	if err != nil {
		return nil, eris.Wrapf(err, "scene %s", path)
	}
	return desc, nil
}
