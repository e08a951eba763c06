package debugui

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var stringerType = reflect.TypeFor[fmt.Stringer]()

type FieldInfo struct {
	Name      string
	Label     string
	Type      reflect.Type
	Index     int
	IsPointer bool
	IsStruct  bool
	IsSlice   bool
	IsMap     bool
	// IsStringer marks fields shown through their String method instead of being expanded.
	IsStringer bool
}

type ReflectionCache struct {
	mu         sync.RWMutex
	fieldCache map[reflect.Type][]FieldInfo
}

func NewReflectionCache() *ReflectionCache {
	return &ReflectionCache{
		fieldCache: make(map[reflect.Type][]FieldInfo),
	}
}

// GetFields lists the exported, non-embedded fields of t that can be shown in the
// inspector. Function and channel fields are skipped.
func (rc *ReflectionCache) GetFields(t reflect.Type) []FieldInfo {
	rc.mu.RLock()
	cached, ok := rc.fieldCache[t]
	rc.mu.RUnlock()
	if ok {
		return cached
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if cached, ok := rc.fieldCache[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || field.Anonymous {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}
			switch fieldType.Kind() {
			case reflect.Func, reflect.Chan, reflect.UnsafePointer:
				continue
			}

			fields = append(fields, FieldInfo{
				Name:       field.Name,
				Label:      fieldLabel(field),
				Type:       fieldType,
				Index:      i,
				IsPointer:  isPointer,
				IsStruct:   fieldType.Kind() == reflect.Struct,
				IsSlice:    fieldType.Kind() == reflect.Slice,
				IsMap:      fieldType.Kind() == reflect.Map,
				IsStringer: fieldType.Implements(stringerType) || reflect.PointerTo(fieldType).Implements(stringerType),
			})
		}
	}

	rc.fieldCache[t] = fields
	return fields
}

// fieldLabel prefers the yaml key since that is how the field is written in scene files.
func fieldLabel(field reflect.StructField) string {
	for _, key := range []string{"yaml", "json"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

var globalReflectionCache = NewReflectionCache()
