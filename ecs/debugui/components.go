package debugui

import (
	"github.com/plus3/kiln/ecs"
)

type SceneBrowser struct {
	cache           *SceneBrowserCache
	selected        *ecs.Entity
	filterText      string
	showInactive    bool
	maxRowsPerPage  int
	currentPage     int
	rebuildInterval uint64
}

type ComponentInspector struct {
	selected *ecs.Entity
	showRaw  bool
}

type TypeViewer struct {
	cache        *TypeViewerCache
	selectedType string
}

type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

type QueryDebugger struct {
	selectedTypes map[string]bool
	selectedCaps  ecs.Capability
}
