// Package debugui provides immediate-mode GUI integration for scenes using Dear ImGui.
// Panels are issued from display components and deferred to the end of the frame,
// so every ImGui call happens on the goroutine that owns the ImGui frame.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kiln/ecs"
)

const (
	OverlayType = "DebugOverlay"
	ItemType    = "ImguiItem"
)

// StatsSource supplies per-system timings for the performance panel.
type StatsSource interface {
	GetStats() *ecs.SchedulerStats
}

// Register adds the debug UI components to registry. stats may be nil, in which
// case the performance panel only shows frame and scene figures.
func Register(registry *ecs.ComponentRegistry, stats StatsSource) {
	ecs.RegisterComponentFunc[DebugOverlay](registry, OverlayType, func() *DebugOverlay {
		return &DebugOverlay{stats: stats}
	})
	ecs.RegisterComponent[ImguiItem](registry, ItemType)
}

// ImguiItem is a component that holds a Dear ImGui render function.
// Attach this to entities that should render ImGui widgets each frame.
type ImguiItem struct {
	ecs.BaseComponent
	Render func() `json:"-"`
}

// Display defers the render function to the end of the frame.
func (i *ImguiItem) Display(frame *ecs.UpdateFrame) error {
	if i.Render != nil {
		frame.Commands.Defer(i.Render)
	}
	return nil
}

// InputState reports whether Dear ImGui is consuming mouse or keyboard input.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

func currentInputState() InputState {
	io := imgui.CurrentIO()
	return InputState{
		WantCaptureMouse:    io.WantCaptureMouse(),
		WantCaptureKeyboard: io.WantCaptureKeyboard(),
	}
}
