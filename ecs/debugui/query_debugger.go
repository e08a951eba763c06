package debugui

import (
	"context"
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kiln/ecs"
)

type QueryMatch struct {
	Entity *ecs.Entity
	Path   string
	Ready  int
	Total  int
}

var queryCapabilities = []ecs.Capability{ecs.CapLogic, ecs.CapDisplay, ecs.CapCamera}

func NewQueryDebugger() *QueryDebugger {
	return &QueryDebugger{
		selectedTypes: make(map[string]bool),
	}
}

func (qd *QueryDebugger) Render(ctx context.Context, scene *ecs.Scene) {
	if !imgui.BeginV("Query Debugger", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if scene == nil {
		imgui.Text("No scene loaded")
		imgui.End()
		return
	}

	imgui.Text("Capabilities:")
	for _, capability := range queryCapabilities {
		selected := qd.selectedCaps.Has(capability)
		imgui.SameLine()
		if imgui.Checkbox(capability.String(), &selected) {
			if selected {
				qd.selectedCaps |= capability
			} else {
				qd.selectedCaps &^= capability
			}
		}
	}

	imgui.Text("Select Component Types:")
	imgui.Separator()

	if imgui.Button("Clear All") {
		qd.selectedTypes = make(map[string]bool)
		qd.selectedCaps = 0
	}

	for _, compType := range scene.Registry().Tags() {
		selected := qd.selectedTypes[compType]
		if imgui.Checkbox(compType, &selected) {
			if selected {
				qd.selectedTypes[compType] = true
			} else {
				delete(qd.selectedTypes, compType)
			}
		}
	}

	imgui.Separator()

	if len(qd.selectedTypes) == 0 && qd.selectedCaps == 0 {
		imgui.Text("Nothing selected")
		imgui.End()
		return
	}

	matches := MatchEntities(ctx, scene, qd.selectedTypes, qd.selectedCaps)
	ready := 0
	for _, m := range matches {
		ready += m.Ready
	}

	imgui.Text(fmt.Sprintf("Matching Entities: %d", len(matches)))
	imgui.Text(fmt.Sprintf("Ready Components: %d", ready))

	if imgui.TreeNodeStr("Entity Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("QueryEntityTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Path")
			imgui.TableSetupColumn("Components")
			imgui.TableSetupColumn("Ready")
			imgui.TableHeadersRow()

			for _, m := range matches {
				imgui.TableNextRow()

				imgui.TableSetColumnIndex(0)
				imgui.Text(m.Path)

				imgui.TableSetColumnIndex(1)
				imgui.Text(fmt.Sprintf("%d", m.Total))

				imgui.TableSetColumnIndex(2)
				imgui.Text(fmt.Sprintf("%d", m.Ready))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// MatchEntities returns the active entities that carry every tag in types and at
// least one component with all of caps. The root is never matched.
func MatchEntities(ctx context.Context, scene *ecs.Scene, types map[string]bool, caps ecs.Capability) []QueryMatch {
	var matches []QueryMatch

	_ = scene.Walk(ctx, func(_ context.Context, e *ecs.Entity, _ string) error {
		if e.Parent() == nil {
			return nil
		}

		found := 0
		capable := caps == 0
		m := QueryMatch{Entity: e, Path: e.Path()}
		e.WalkComponents(func(tag string, c ecs.Component) {
			m.Total++
			if c.Base().Ready() {
				m.Ready++
			}
			if types[tag] {
				found++
			}
			if caps != 0 && c.Base().Capabilities().Has(caps) {
				capable = true
			}
		})

		if found == len(types) && capable {
			matches = append(matches, m)
		}
		return nil
	})

	return matches
}
