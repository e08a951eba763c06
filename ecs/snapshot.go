package ecs

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// SceneStats summarizes the shape of a scene tree.
type SceneStats struct {
	Entities         int            `json:"entities"`
	ActiveEntities   int            `json:"activeEntities"`
	Components       int            `json:"components"`
	ReadyComponents  int            `json:"readyComponents"`
	PendingSetups    int            `json:"pendingSetups"`
	MaxDepth         int            `json:"maxDepth"`
	ComponentsByType map[string]int `json:"componentsByType"`
}

// CollectStats walks the whole tree, inactive subtrees included. The root is not
// counted as an entity.
func (s *Scene) CollectStats() SceneStats {
	stats := SceneStats{ComponentsByType: make(map[string]int)}

	var visit func(e *Entity, depth int, active bool)
	visit = func(e *Entity, depth int, active bool) {
		active = active && e.Active()
		if depth > 0 {
			stats.Entities++
			if active {
				stats.ActiveEntities++
			}
			stats.MaxDepth = max(stats.MaxDepth, depth)
		}
		for _, c := range e.componentList() {
			stats.Components++
			stats.ComponentsByType[c.Base().Type()]++
			if c.Base().Ready() {
				stats.ReadyComponents++
			}
		}
		for _, slot := range e.childList() {
			visit(slot.entity, depth+1, active)
		}
	}
	visit(s.root, 0, true)

	stats.PendingSetups = s.Pending()
	return stats
}

type EntitySnapshot struct {
	Name       string              `json:"name"`
	Active     bool                `json:"active"`
	Components []ComponentSnapshot `json:"components,omitempty"`
	Children   []EntitySnapshot    `json:"children,omitempty"`
}

type ComponentSnapshot struct {
	Type         string          `json:"type"`
	Enabled      bool            `json:"enabled"`
	State        string          `json:"state"`
	Capabilities string          `json:"capabilities"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// Snapshot captures the tree, components ordered by tag. Each component is
// encoded on its own so only its exported fields end up in Data.
func (s *Scene) Snapshot() (EntitySnapshot, error) {
	return snapshotEntity(s.root, "")
}

func snapshotEntity(e *Entity, name string) (EntitySnapshot, error) {
	snap := EntitySnapshot{Name: name, Active: e.Active()}
	for _, c := range e.componentList() {
		b := c.Base()
		data, err := json.Marshal(c)
		if err != nil {
			return snap, eris.Wrapf(err, "failed to marshal component %s", b.Type())
		}
		snap.Components = append(snap.Components, ComponentSnapshot{
			Type:         b.Type(),
			Enabled:      b.Enabled(),
			State:        b.State().String(),
			Capabilities: b.Capabilities().String(),
			Data:         data,
		})
	}
	for _, slot := range e.childList() {
		child, err := snapshotEntity(slot.entity, slot.name)
		if err != nil {
			return snap, err
		}
		snap.Children = append(snap.Children, child)
	}
	return snap, nil
}

// MarshalSnapshot encodes a snapshot as JSON.
func MarshalSnapshot(snap EntitySnapshot, indent bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(snap, "", "  ")
	} else {
		data, err = json.Marshal(snap)
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to marshal scene snapshot")
	}
	return data, nil
}

// DumpJSON snapshots the scene and encodes it.
func (s *Scene) DumpJSON(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return MarshalSnapshot(snap, true)
}
