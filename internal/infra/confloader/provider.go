package confloader

import (
	"sort"
	"strings"

	"github.com/knadh/koanf/maps"

	"github.com/yndnr/confhelper-go/internal/core/domain"
)

// ArrayLoader is a koanf provider serving an in-memory map.
//
// koanf uses Read for map providers; ReadBytes and Load are not supported.
type ArrayLoader struct {
	source string
	data   map[string]any
}

// NewArrayLoader creates an empty loader.
func NewArrayLoader() *ArrayLoader {
	return &ArrayLoader{data: map[string]any{}}
}

// Import replaces the loader's data. With expandDotted, keys such as
// "subtree.bar" become nested maps; dotted keys are applied in sorted order
// so overlapping keys resolve deterministically. A nil map keeps the
// previous data and only renames the source.
func (a *ArrayLoader) Import(name string, data map[string]any, expandDotted bool) *ArrayLoader {
	a.source = name
	if data == nil {
		return a
	}
	if !expandDotted {
		a.data = maps.Copy(data)
		return a
	}
	a.data = expandDottedKeys(data)
	return a
}

// Source returns the name given to the last Import.
func (a *ArrayLoader) Source() string {
	return a.source
}

// Read returns a copy of the loaded map.
func (a *ArrayLoader) Read() (map[string]any, error) {
	return maps.Copy(a.data), nil
}

// ReadBytes is not supported.
func (a *ArrayLoader) ReadBytes() ([]byte, error) {
	return nil, unsupported("readBytes")
}

// Load is not supported; use Import.
func (a *ArrayLoader) Load(string) error {
	return unsupported("load")
}

func unsupported(method string) error {
	return domain.ErrRuntime.WithDetailsf("method %q is not supported by ArrayLoader", method)
}

func expandDottedKeys(data map[string]any) map[string]any {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(data))
	for _, k := range keys {
		v := data[k]
		if nested, ok := v.(map[string]any); ok {
			v = maps.Copy(nested)
		}
		if !strings.Contains(k, ".") {
			out[k] = v
			continue
		}
		maps.Merge(maps.Unflatten(map[string]any{k: v}, "."), out)
	}
	return out
}
