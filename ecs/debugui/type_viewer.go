package debugui

import (
	"fmt"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kiln/ecs"
)

type TypeInfo struct {
	Tag          string
	GoType       string
	Capabilities ecs.Capability
	Instances    int
}

type TypeViewerCache struct {
	types         []TypeInfo
	scene         *ecs.Scene
	builtAt       uint64
	sortColumn    int
	sortAscending bool
}

func NewTypeViewer() *TypeViewer {
	return &TypeViewer{
		cache: &TypeViewerCache{
			sortColumn:    3,
			sortAscending: false,
		},
	}
}

// Render lists every registered component type with its live instance count and
// returns the tag clicked this frame, if any.
func (tv *TypeViewer) Render(scene *ecs.Scene, frame uint64) string {
	if !imgui.BeginV("Component Types", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return ""
	}

	if scene == nil {
		imgui.Text("No scene loaded")
		imgui.End()
		return ""
	}

	tv.rebuildCacheIfNeeded(scene, frame)

	maxInstances := 0
	for _, info := range tv.cache.types {
		maxInstances = max(maxInstances, info.Instances)
	}

	var clicked string

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("TypeTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Tag")
		imgui.TableSetupColumn("Go Type")
		imgui.TableSetupColumn("Capabilities")
		imgui.TableSetupColumn("Instances")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			tv.cache.sortColumn = int(spec.ColumnIndex())
			tv.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			tv.sortTypes()
			sortSpecs.SetSpecsDirty(false)
		}

		for _, info := range tv.cache.types {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(info.Tag, tv.selectedType == info.Tag, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				tv.selectedType = info.Tag
				clicked = info.Tag
			}

			imgui.TableNextColumn()
			imgui.Text(info.GoType)

			imgui.TableNextColumn()
			imgui.Text(info.Capabilities.String())

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", info.Instances))

			if maxInstances > 0 {
				barWidth := float32(info.Instances) / float32(maxInstances) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	imgui.End()
	return clicked
}

func (tv *TypeViewer) rebuildCacheIfNeeded(scene *ecs.Scene, frame uint64) {
	if tv.cache.scene != scene || tv.cache.types == nil || frame-tv.cache.builtAt >= 30 {
		tv.cache.types = CollectTypes(scene)
		tv.cache.scene = scene
		tv.cache.builtAt = frame
		tv.sortTypes()
	}
}

// CollectTypes pairs every registered tag with the number of instances in scene.
func CollectTypes(scene *ecs.Scene) []TypeInfo {
	registry := scene.Registry()
	counts := scene.CollectStats().ComponentsByType

	tags := registry.Tags()
	types := make([]TypeInfo, 0, len(tags))
	for _, tag := range tags {
		info := TypeInfo{Tag: tag, Instances: counts[tag]}
		if t, ok := registry.Type(tag); ok {
			info.GoType = t.String()
		}
		info.Capabilities, _ = registry.Capabilities(tag)
		types = append(types, info)
	}
	return types
}

func (tv *TypeViewer) sortTypes() {
	sort.SliceStable(tv.cache.types, func(i, j int) bool {
		a, b := tv.cache.types[i], tv.cache.types[j]
		var less bool

		switch tv.cache.sortColumn {
		case 1:
			less = a.GoType < b.GoType
		case 2:
			less = a.Capabilities < b.Capabilities
		case 3:
			less = a.Instances < b.Instances
		default:
			less = a.Tag < b.Tag
		}

		if !tv.cache.sortAscending {
			return !less
		}
		return less
	})
}
