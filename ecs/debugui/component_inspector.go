package debugui

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/goccy/go-json"
	"github.com/plus3/kiln/ecs"
)

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

// Render edits the selected entity's components in place. It must run after the
// frame's systems, which is where deferred commands execute.
func (ci *ComponentInspector) Render(selected *ecs.Entity) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	ci.selected = selected

	if ci.selected == nil {
		imgui.Text("No entity selected")
		imgui.End()
		return
	}

	imgui.Text(fmt.Sprintf("Entity: %s", ci.selected.Path()))
	imgui.Text(fmt.Sprintf("Children: %d", ci.selected.ChildCount()))
	imgui.Checkbox("Show raw JSON", &ci.showRaw)
	imgui.Separator()

	components := make(map[string]ecs.Component)
	var tags []string
	ci.selected.WalkComponents(func(tag string, c ecs.Component) {
		components[tag] = c
		tags = append(tags, tag)
	})
	sort.Strings(tags)

	for _, tag := range tags {
		component := components[tag]
		base := component.Base()

		if imgui.TreeNodeStr(fmt.Sprintf("%s [%s, %s]##%s", tag, base.Capabilities(), base.State(), tag)) {
			enabled := base.Enabled()
			if imgui.Checkbox("Enabled", &enabled) {
				base.SetEnabled(enabled)
			}
			ci.renderComponent(component)
			if ci.showRaw {
				ci.renderRaw(component)
			}
			imgui.TreePop()
		}
	}

	imgui.End()
}

func (ci *ComponentInspector) renderComponent(component ecs.Component) {
	val := reflect.ValueOf(component)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	fields := globalReflectionCache.GetFields(val.Type())
	if len(fields) == 0 {
		imgui.Text("No editable fields")
		return
	}

	for _, field := range fields {
		fieldVal := val.Field(field.Index)
		if field.IsPointer && !fieldVal.IsNil() {
			fieldVal = fieldVal.Elem()
		}

		ci.renderField(field.Label, fieldVal, field)
	}
}

func (ci *ComponentInspector) renderRaw(component ecs.Component) {
	data, err := json.MarshalIndent(component, "", "  ")
	if err != nil {
		imgui.Text(fmt.Sprintf("marshal failed: %v", err))
		return
	}
	imgui.Text(string(data))
}

func (ci *ComponentInspector) renderField(name string, val reflect.Value, field FieldInfo) {
	if !val.IsValid() {
		imgui.Text(fmt.Sprintf("%s: <invalid>", name))
		return
	}

	if field.IsPointer && val.Kind() == reflect.Ptr && val.IsNil() {
		imgui.Text(fmt.Sprintf("%s: nil", name))
		return
	}

	if field.IsStringer {
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		return
	}

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetInt(int64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputInt(fmt.Sprintf("##%s", name), &v) && v >= 0 && val.CanSet() {
			val.SetUint(uint64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(150)
		if imgui.InputFloat(fmt.Sprintf("##%s", name), &v) && val.CanSet() {
			val.SetFloat(float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name, &v) && val.CanSet() {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		imgui.Text(fmt.Sprintf("%s:", name))
		imgui.SameLine()
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(fmt.Sprintf("##%s", name), "", &v, imgui.InputTextFlagsNone, nil) && val.CanSet() {
			val.SetString(v)
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			nestedFields := globalReflectionCache.GetFields(val.Type())
			for _, nf := range nestedFields {
				nestedVal := val.Field(nf.Index)
				if nf.IsPointer && !nestedVal.IsNil() {
					nestedVal = nestedVal.Elem()
				}
				ci.renderField(nf.Label, nestedVal, nf)
			}
			imgui.TreePop()
		}

	case reflect.Array:
		if val.Len() <= 4 && isNumeric(val.Type().Elem().Kind()) {
			ci.renderVector(name, val)
			return
		}
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Slice:
		if imgui.TreeNodeStr(fmt.Sprintf("%s [%d items]##%s", name, val.Len(), name)) {
			for i := 0; i < val.Len(); i++ {
				imgui.BulletText(fmt.Sprintf("%v", val.Index(i).Interface()))
			}
			imgui.TreePop()
		}

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
	}
}

// renderVector edits small numeric arrays such as colors one element at a time.
func (ci *ComponentInspector) renderVector(name string, val reflect.Value) {
	imgui.Text(fmt.Sprintf("%s:", name))
	for i := 0; i < val.Len(); i++ {
		elem := val.Index(i)
		imgui.SameLine()
		imgui.SetNextItemWidth(60)
		label := fmt.Sprintf("##%s%d", name, i)
		switch {
		case elem.CanInt():
			v := int32(elem.Int())
			if imgui.InputInt(label, &v) && elem.CanSet() {
				elem.SetInt(int64(v))
			}
		case elem.CanUint():
			v := int32(elem.Uint())
			if imgui.InputInt(label, &v) && v >= 0 && elem.CanSet() {
				elem.SetUint(uint64(v))
			}
		case elem.CanFloat():
			v := float32(elem.Float())
			if imgui.InputFloat(label, &v) && elem.CanSet() {
				elem.SetFloat(float64(v))
			}
		}
	}
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
