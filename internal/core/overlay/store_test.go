package overlay

import (
	"errors"
	"reflect"
	"testing"

	"github.com/knadh/koanf/v2"

	"github.com/yndnr/confhelper-go/internal/core/domain"
)

func layer(t *testing.T, data map[string]any) *koanf.Koanf {
	t.Helper()
	k := koanf.New(Delimiter)
	for key, value := range data {
		if err := k.Set(key, value); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}
	return k
}

func TestNew(t *testing.T) {
	s := New()

	if got := s.ContextNames(); !reflect.DeepEqual(got, []string{DefaultContext, ProcessContext}) {
		t.Errorf("ContextNames() = %v", got)
	}
	if s.ActiveContext() != DefaultContext {
		t.Errorf("ActiveContext() = %q, want %q", s.ActiveContext(), DefaultContext)
	}
	if len(s.Export()) != 0 {
		t.Errorf("Export() = %v, want empty", s.Export())
	}
}

func TestStore_AddContextOrder(t *testing.T) {
	s := New()
	s.AddContext("alpha", layer(t, map[string]any{"k": 1}))
	s.AddContext("beta", layer(t, map[string]any{"k": 2}))

	want := []string{DefaultContext, "alpha", "beta", ProcessContext}
	if got := s.ContextNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ContextNames() = %v, want %v", got, want)
	}
	if got := s.GetRaw("k"); got != 2 {
		t.Errorf("GetRaw(k) = %v, want 2", got)
	}

	// Replacing keeps the position.
	s.AddContext("alpha", layer(t, map[string]any{"k": 3, "only": "alpha"}))
	if got := s.ContextNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ContextNames() after replace = %v, want %v", got, want)
	}
	if got := s.GetRaw("k"); got != 2 {
		t.Errorf("GetRaw(k) = %v, beta should still win", got)
	}
	if got := s.GetRaw("only"); got != "alpha" {
		t.Errorf("GetRaw(only) = %v", got)
	}
}

func TestStore_AddContextBefore(t *testing.T) {
	s := New()
	s.AddContext("alpha", nil)
	s.AddContext("beta", nil)

	if err := s.AddContextBefore("alpha", "early", layer(t, map[string]any{"k": "early"})); err != nil {
		t.Fatalf("AddContextBefore() error = %v", err)
	}
	want := []string{DefaultContext, "early", "alpha", "beta", ProcessContext}
	if got := s.ContextNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ContextNames() = %v, want %v", got, want)
	}

	// Moving an existing context.
	if err := s.AddContextBefore("early", "beta", nil); err != nil {
		t.Fatalf("AddContextBefore() error = %v", err)
	}
	want = []string{DefaultContext, "beta", "early", "alpha", ProcessContext}
	if got := s.ContextNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ContextNames() = %v, want %v", got, want)
	}

	tests := []struct {
		name   string
		before string
		ctx    string
	}{
		{"unknown anchor", "missing", "x"},
		{"before default", DefaultContext, "x"},
		{"move sentinel", "alpha", ProcessContext},
		{"before itself", "alpha", "alpha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.AddContextBefore(tt.before, tt.ctx, nil); !errors.Is(err, domain.ErrRuntime) {
				t.Errorf("AddContextBefore() error = %v, want runtime error", err)
			}
		})
	}
}

func TestStore_ExportMerge(t *testing.T) {
	s := New()
	if err := s.SetDefault("server.port", 80); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDefault("server.host", "localhost"); err != nil {
		t.Fatal(err)
	}
	s.AddContext("file", layer(t, map[string]any{
		"server.port": 8080,
		"mode":        map[string]any{"fast": true},
		"list":        []any{1, 2, 3},
	}))
	s.AddContext("override", layer(t, map[string]any{
		"mode": "slow",
		"list": []any{4},
	}))
	if err := s.ContextSet(ProcessContext, "server.tls", true); err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"server": map[string]any{"port": 8080, "host": "localhost", "tls": true},
		"mode":   "slow",
		"list":   []any{4},
	}
	if got := s.Export(); !reflect.DeepEqual(got, want) {
		t.Errorf("Export() = %#v, want %#v", got, want)
	}

	// A later map replaces an earlier scalar outright.
	s.AddContext("remap", layer(t, map[string]any{"mode": map[string]any{"fast": false}}))
	if got := s.GetRaw("mode"); !reflect.DeepEqual(got, map[string]any{"fast": false}) {
		t.Errorf("GetRaw(mode) = %#v", got)
	}
}

func TestStore_ExportIsACopy(t *testing.T) {
	s := New()
	s.AddContext("a", layer(t, map[string]any{"tree.leaf": 1}))

	out := s.Export()
	out["tree"].(map[string]any)["leaf"] = 2

	if got := s.GetRaw("tree.leaf"); got != 1 {
		t.Errorf("GetRaw(tree.leaf) = %v, export should not alias contexts", got)
	}
}

func TestStore_SetTargets(t *testing.T) {
	s := New()

	if err := s.Set("k", "default"); err != nil {
		t.Fatal(err)
	}
	if got := s.Context(DefaultContext).Get("k"); got != "default" {
		t.Errorf("Set() before SetActiveContext should write to default, got %v", got)
	}

	s.SetActiveContext("cli")
	if !s.HasContext("cli") {
		t.Fatal("SetActiveContext() should create the context")
	}
	if err := s.Set("k", "cli"); err != nil {
		t.Fatal(err)
	}
	if err := s.ContextSet("side", "k", "side"); err != nil {
		t.Fatal(err)
	}
	if s.ActiveContext() != "cli" {
		t.Errorf("ContextSet() changed the active context to %q", s.ActiveContext())
	}

	want := []string{DefaultContext, "cli", "side", ProcessContext}
	if got := s.ContextNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ContextNames() = %v, want %v", got, want)
	}
	if got := s.GetRaw("k"); got != "side" {
		t.Errorf("GetRaw(k) = %v, want side", got)
	}

	if err := s.Set("", 1); !errors.Is(err, domain.ErrRuntime) {
		t.Errorf("Set(\"\") error = %v, want runtime error", err)
	}
}

func TestStore_SetReplacesSubtree(t *testing.T) {
	s := New()
	if err := s.Set("tree", map[string]any{"a": 1, "b": 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("tree", map[string]any{"c": 3}); err != nil {
		t.Fatal(err)
	}
	if got := s.GetRaw("tree"); !reflect.DeepEqual(got, map[string]any{"c": 3}) {
		t.Errorf("GetRaw(tree) = %v, want replaced map", got)
	}
}

func TestStore_SetCopiesMaps(t *testing.T) {
	s := New()
	value := map[string]any{"a": 1}
	if err := s.Set("tree", value); err != nil {
		t.Fatal(err)
	}
	value["a"] = 2

	if got := s.GetRaw("tree.a"); got != 1 {
		t.Errorf("GetRaw(tree.a) = %v, stored value should not alias caller's map", got)
	}
}

func TestStore_Disambiguate(t *testing.T) {
	s := New()
	if got := s.Disambiguate("app"); got != "app" {
		t.Errorf("Disambiguate(app) = %q", got)
	}

	s.AddContext("app", nil)
	if got := s.Disambiguate("app"); got != "app-02" {
		t.Errorf("Disambiguate(app) = %q, want app-02", got)
	}

	s.AddContext("app-02", nil)
	if got := s.Disambiguate("app"); got != "app-03" {
		t.Errorf("Disambiguate(app) = %q, want app-03", got)
	}

	if got := s.Disambiguate(DefaultContext); got != "default-02" {
		t.Errorf("Disambiguate(default) = %q", got)
	}
}

func TestStore_OnChange(t *testing.T) {
	s := New()
	var calls int
	s.OnChange(func() { calls++ })

	s.AddContext("a", nil)
	_ = s.Set("k", 1)
	_ = s.SetDefault("k", 0)
	_ = s.ContextSet("b", "k", 2)
	_ = s.AddContextBefore("a", "c", nil)

	// ContextSet on a new context also counts the implicit AddContext.
	if calls != 6 {
		t.Errorf("OnChange calls = %d, want 6", calls)
	}
}

func TestStore_ContextSetSwapsLayer(t *testing.T) {
	s := New()
	orig := layer(t, map[string]any{"db.host": "a", "db.port": 1})
	s.AddContext("a", orig)

	var calls int
	s.OnChange(func() { calls++ })
	if err := s.ContextSet("a", "db", map[string]any{"host": "b"}); err != nil {
		t.Fatalf("ContextSet() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("OnChange calls = %d, want 1", calls)
	}
	if got := s.GetRaw("db.host"); got != "b" {
		t.Errorf("GetRaw(db.host) = %v, want b", got)
	}
	if s.GetRaw("db.port") != nil {
		t.Error("db.port should be gone, the subtree was replaced")
	}
	if got := orig.Get("db.host"); got != "a" {
		t.Errorf("registered layer db.host = %v, want a (left untouched)", got)
	}
	if got := orig.Get("db.port"); got != 1 {
		t.Errorf("registered layer db.port = %v, want 1 (left untouched)", got)
	}
}

func TestStore_ContextReturnsCopy(t *testing.T) {
	s := New()
	s.AddContext("a", layer(t, map[string]any{"k": 1}))

	c := s.Context("a")
	_ = c.Set("k", 2)

	if got := s.GetRaw("k"); got != 1 {
		t.Errorf("GetRaw(k) = %v, Context() should return a copy", got)
	}
	if s.Context("missing") != nil {
		t.Error("Context(missing) should be nil")
	}
}
