package debugui

import (
	"context"

	"github.com/plus3/kiln/ecs"
)

// SpawnDebugUI attaches an entity carrying a DebugOverlay to the scene root. The
// registry must have been set up with Register.
func SpawnDebugUI(ctx context.Context, scene *ecs.Scene, panels ...string) (*DebugOverlay, error) {
	desc := map[string]any{}
	if len(panels) > 0 {
		desc["panels"] = panels
	}
	descriptor, err := ecs.DescriptorOf(desc)
	if err != nil {
		return nil, err
	}

	node := ecs.NodeDesc{Components: []ecs.ComponentDesc{{Type: OverlayType, Descriptor: descriptor}}}
	e, err := scene.CreateChild(ctx, node, "debugui", scene.Root())
	if err != nil {
		return nil, err
	}
	overlay, _ := ecs.GetComponent[*DebugOverlay](e, OverlayType)
	return overlay, nil
}
