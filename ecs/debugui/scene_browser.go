package debugui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/kiln/ecs"
)

type EntityRow struct {
	Entity         *ecs.Entity
	Name           string
	Path           string
	Depth          int
	Order          int
	Active         bool
	ComponentTypes []string
}

type SceneBrowserCache struct {
	rows          []EntityRow
	scene         *ecs.Scene
	builtAt       uint64
	sortColumn    int
	sortAscending bool
}

func NewSceneBrowser(maxRowsPerPage int) *SceneBrowser {
	return &SceneBrowser{
		cache: &SceneBrowserCache{
			sortColumn:    0,
			sortAscending: true,
		},
		showInactive:    true,
		maxRowsPerPage:  maxRowsPerPage,
		rebuildInterval: 30,
	}
}

func (sb *SceneBrowser) Render(scene *ecs.Scene, frame uint64) {
	if !imgui.BeginV("Scene Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if scene == nil {
		imgui.Text("No scene loaded")
		imgui.End()
		return
	}

	sb.rebuildCacheIfNeeded(scene, frame)

	imgui.InputTextWithHint("##search", "Search...", &sb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		sb.filterText = ""
	}
	imgui.SameLine()
	imgui.Checkbox("Show inactive", &sb.showInactive)
	imgui.SameLine()
	if imgui.Button("Refresh") {
		sb.cache.rows = nil
	}

	filteredRows := sb.getFilteredRows()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("SceneTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Active")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sb.cache.sortColumn = int(spec.ColumnIndex())
			sb.cache.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sb.sortRows()
			sortSpecs.SetSpecsDirty(false)
		}

		startIdx := min(sb.currentPage*sb.maxRowsPerPage, len(filteredRows))
		endIdx := min(startIdx+sb.maxRowsPerPage, len(filteredRows))

		for i := startIdx; i < endIdx; i++ {
			row := filteredRows[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			label := row.Name
			if sb.cache.sortColumn == 0 {
				label = strings.Repeat("  ", row.Depth-1) + row.Name
			}
			isSelected := sb.selected == row.Entity
			if imgui.SelectableBoolV(fmt.Sprintf("%s##%s", label, row.Path), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				sb.selected = row.Entity
			}

			imgui.TableNextColumn()
			if row.Active {
				imgui.Text("yes")
			} else {
				imgui.Text("no")
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(row.ComponentTypes)))
		}

		imgui.EndTable()
	}

	if len(filteredRows) > sb.maxRowsPerPage {
		totalPages := (len(filteredRows) + sb.maxRowsPerPage - 1) / sb.maxRowsPerPage
		sb.currentPage = min(sb.currentPage, totalPages-1)
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", sb.currentPage+1, totalPages, len(filteredRows)))
		imgui.SameLine()
		if imgui.Button("Prev") && sb.currentPage > 0 {
			sb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && sb.currentPage < totalPages-1 {
			sb.currentPage++
		}
	} else {
		sb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filteredRows)))
	}

	if sb.selected != nil {
		imgui.SameLine()
		active := sb.selected.Active()
		if imgui.Checkbox(fmt.Sprintf("Active: %s", sb.selected.Path()), &active) {
			sb.selected.SetActive(active)
			sb.cache.rows = nil
		}
	}

	imgui.End()
}

// Selected returns the entity picked in the table, or nil once it has left the scene.
func (sb *SceneBrowser) Selected() *ecs.Entity {
	if sb.selected != nil && (sb.cache.scene == nil || sb.selected.Root() != sb.cache.scene.Root()) {
		sb.selected = nil
	}
	return sb.selected
}

func (sb *SceneBrowser) rebuildCacheIfNeeded(scene *ecs.Scene, frame uint64) {
	if sb.cache.scene != scene {
		sb.cache.rows = nil
		sb.cache.scene = scene
		sb.selected = nil
	}
	if frame-sb.cache.builtAt >= sb.rebuildInterval {
		sb.cache.rows = nil
	}

	if sb.cache.rows == nil {
		sb.cache.rows = CollectRows(context.Background(), scene)
		sb.cache.builtAt = frame
		sb.sortRows()
	}
}

// CollectRows flattens the scene into depth-first rows, inactive subtrees
// included. The root is left out.
func CollectRows(ctx context.Context, scene *ecs.Scene) []EntityRow {
	rows := make([]EntityRow, 0, 256)
	depths := map[*ecs.Entity]int{scene.Root(): 0}
	activeness := map[*ecs.Entity]bool{scene.Root(): true}

	_ = scene.WalkAll(ctx, func(_ context.Context, e *ecs.Entity, name string) error {
		parent := e.Parent()
		if parent == nil {
			return nil
		}
		depth := depths[parent] + 1
		active := activeness[parent] && e.Active()
		depths[e] = depth
		activeness[e] = active

		var types []string
		e.WalkComponents(func(tag string, _ ecs.Component) {
			types = append(types, tag)
		})
		sort.Strings(types)

		rows = append(rows, EntityRow{
			Entity:         e,
			Name:           name,
			Path:           e.Path(),
			Depth:          depth,
			Order:          len(rows),
			Active:         active,
			ComponentTypes: types,
		})
		return nil
	})
	return rows
}

func (sb *SceneBrowser) sortRows() {
	sort.SliceStable(sb.cache.rows, func(i, j int) bool {
		a, b := sb.cache.rows[i], sb.cache.rows[j]
		var less bool

		switch sb.cache.sortColumn {
		case 1:
			less = !a.Active && b.Active
		case 2:
			less = strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case 3:
			less = len(a.ComponentTypes) < len(b.ComponentTypes)
		default:
			less = a.Order < b.Order
		}

		if !sb.cache.sortAscending {
			return !less
		}
		return less
	})
}

func (sb *SceneBrowser) getFilteredRows() []EntityRow {
	return FilterRows(sb.cache.rows, sb.filterText, sb.showInactive)
}

// FilterRows keeps rows whose path or component types contain text, ignoring case.
func FilterRows(rows []EntityRow, text string, showInactive bool) []EntityRow {
	if text == "" && showInactive {
		return rows
	}

	filtered := make([]EntityRow, 0, len(rows))
	filterLower := strings.ToLower(text)

	for _, row := range rows {
		if !showInactive && !row.Active {
			continue
		}

		if text != "" {
			pathStr := strings.ToLower(row.Path)
			componentsStr := strings.ToLower(strings.Join(row.ComponentTypes, " "))

			if !strings.Contains(pathStr, filterLower) &&
				!strings.Contains(componentsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, row)
	}

	return filtered
}
