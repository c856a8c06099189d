package confloader

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/knadh/koanf/v2"

	"github.com/yndnr/confhelper-go/internal/core/domain"
)

func TestArrayLoader_Import(t *testing.T) {
	in := map[string]any{"foo": "bar", "subtree.bar": 100, "subtree.baz": "another_value"}

	tests := []struct {
		name   string
		expand bool
		want   map[string]any
	}{
		{
			name:   "expand dotted keys",
			expand: true,
			want: map[string]any{
				"foo":     "bar",
				"subtree": map[string]any{"bar": 100, "baz": "another_value"},
			},
		},
		{
			name:   "keep dotted keys",
			expand: false,
			want:   in,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewArrayLoader().Import("values", in, tt.expand)
			got, err := loader.Read()
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Read() = %v, want %v", got, tt.want)
			}
			if loader.Source() != "values" {
				t.Errorf("Source() = %q, want %q", loader.Source(), "values")
			}
		})
	}
}

func TestArrayLoader_ImportMergesNested(t *testing.T) {
	loader := NewArrayLoader().Import("values", map[string]any{
		"subtree":     map[string]any{"keep": true},
		"subtree.bar": 1,
		"a.b.c":       "deep",
	}, true)

	got, _ := loader.Read()
	want := map[string]any{
		"subtree": map[string]any{"keep": true, "bar": 1},
		"a":       map[string]any{"b": map[string]any{"c": "deep"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read() = %v, want %v", got, want)
	}
}

func TestArrayLoader_ReadReturnsCopy(t *testing.T) {
	in := map[string]any{"tree": map[string]any{"leaf": 1}}
	loader := NewArrayLoader().Import("values", in, true)

	got, _ := loader.Read()
	got["tree"].(map[string]any)["leaf"] = 2

	again, _ := loader.Read()
	if again["tree"].(map[string]any)["leaf"] != 1 {
		t.Error("Read() should not expose internal state")
	}
	if in["tree"].(map[string]any)["leaf"] != 1 {
		t.Error("Import() should not alias the input")
	}
}

func TestArrayLoader_NilDataKeepsPrevious(t *testing.T) {
	loader := NewArrayLoader().Import("first", map[string]any{"a": 1}, true)
	loader.Import("second", nil, true)

	got, _ := loader.Read()
	if got["a"] != 1 {
		t.Errorf("Read() = %v, want previous data", got)
	}
	if loader.Source() != "second" {
		t.Errorf("Source() = %q", loader.Source())
	}
}

func TestArrayLoader_Unsupported(t *testing.T) {
	loader := NewArrayLoader()

	err := loader.Load("foo")
	if !errors.Is(err, domain.ErrRuntime) {
		t.Fatalf("Load() error = %v, want runtime error", err)
	}
	if !strings.Contains(err.Error(), `method "load" is not supported by ArrayLoader`) {
		t.Errorf("Load() error = %q", err.Error())
	}

	if _, err := loader.ReadBytes(); !errors.Is(err, domain.ErrRuntime) {
		t.Errorf("ReadBytes() error = %v, want runtime error", err)
	}
}

func TestArrayLoader_AsKoanfProvider(t *testing.T) {
	k := koanf.New(Delimiter)
	loader := NewArrayLoader().Import("values", map[string]any{"db.host": "localhost"}, true)

	if err := k.Load(loader, nil); err != nil {
		t.Fatalf("koanf Load() error = %v", err)
	}
	if k.String("db.host") != "localhost" {
		t.Errorf("db.host = %q", k.String("db.host"))
	}
}
