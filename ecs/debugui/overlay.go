package debugui

import (
	"context"
	"slices"
	"sync"

	"github.com/plus3/kiln/ecs"
	"github.com/rotisserie/eris"
)

const (
	PanelBrowser     = "browser"
	PanelInspector   = "inspector"
	PanelTypes       = "types"
	PanelPerformance = "performance"
	PanelQuery       = "query"
)

var allPanels = []string{PanelBrowser, PanelInspector, PanelTypes, PanelPerformance, PanelQuery}

// DebugOverlay is a display component that draws the scene inspection windows.
type DebugOverlay struct {
	ecs.BaseComponent
	Panels []string `json:"panels"`

	stats     StatsSource
	browser   *SceneBrowser
	inspector *ComponentInspector
	types     *TypeViewer
	perf      *PerformanceStats
	query     *QueryDebugger

	mu    sync.Mutex
	input InputState
}

type overlayDesc struct {
	Panels   []string `yaml:"panels"`
	History  int      `yaml:"history"`
	PageSize int      `yaml:"pageSize"`
}

func (o *DebugOverlay) Create(ctx context.Context, desc ecs.Descriptor) error {
	d := overlayDesc{Panels: allPanels, History: 120, PageSize: 100}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	for _, p := range d.Panels {
		if !slices.Contains(allPanels, p) {
			return eris.Errorf("unknown debug panel %q", p)
		}
	}
	if d.History <= 0 || d.PageSize <= 0 {
		return eris.New("history and pageSize must be positive")
	}

	o.Panels = d.Panels
	o.browser = NewSceneBrowser(d.PageSize)
	o.inspector = NewComponentInspector()
	o.types = NewTypeViewer()
	o.perf = NewPerformanceStats(d.History)
	o.query = NewQueryDebugger()
	return nil
}

// Display defers the panels to the end of the frame.
func (o *DebugOverlay) Display(frame *ecs.UpdateFrame) error {
	frame.Commands.Defer(func() { o.render(frame) })
	return nil
}

// render runs from the frame's deferred commands, after the pass context was
// cancelled, so nothing below may depend on frame.Context().
func (o *DebugOverlay) render(frame *ecs.UpdateFrame) {
	input := currentInputState()
	o.mu.Lock()
	o.input = input
	o.mu.Unlock()

	scene := frame.Scene
	for _, panel := range o.Panels {
		switch panel {
		case PanelBrowser:
			o.browser.Render(scene, frame.Frame)
		case PanelInspector:
			o.inspector.Render(o.browser.Selected())
		case PanelTypes:
			o.types.Render(scene, frame.Frame)
		case PanelPerformance:
			var stats *ecs.SchedulerStats
			if o.stats != nil {
				stats = o.stats.GetStats()
			}
			o.perf.Render(scene, stats, float32(frame.DeltaTime))
		case PanelQuery:
			o.query.Render(context.Background(), scene)
		}
	}
}

// InputState returns the capture state seen by the last rendered frame.
func (o *DebugOverlay) InputState() InputState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}
