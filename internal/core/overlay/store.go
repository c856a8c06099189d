// Package overlay keeps configuration as an ordered stack of named layers
// ("contexts") and computes their merged view.
//
// Two sentinel contexts always exist: "default" is the lowest priority layer
// and "process" the highest. Contexts added later sit just below "process".
package overlay

import (
	"fmt"
	"slices"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/v2"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// Sentinel context names.
const (
	DefaultContext = "default"
	ProcessContext = "process"
)

// Delimiter separates path segments in keys.
const Delimiter = "."

// Store is an ordered set of koanf layers. It is not safe for concurrent use.
type Store struct {
	contexts map[string]*koanf.Koanf
	order    []string
	active   string
	onChange []func()
	logger   logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a store holding only the two sentinels. The active context is
// "default".
func New(opts ...Option) *Store {
	s := &Store{
		contexts: map[string]*koanf.Koanf{
			DefaultContext: koanf.New(Delimiter),
			ProcessContext: koanf.New(Delimiter),
		},
		order:  []string{DefaultContext, ProcessContext},
		active: DefaultContext,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to run after every mutation.
func (s *Store) OnChange(fn func()) {
	s.onChange = append(s.onChange, fn)
}

func (s *Store) changed() {
	for _, fn := range s.onChange {
		fn()
	}
}

// AddContext registers layer under name. An existing context keeps its
// position and has its data replaced; a new one is inserted just below
// "process". A nil layer registers an empty context.
func (s *Store) AddContext(name string, layer *koanf.Koanf) {
	if layer == nil {
		layer = koanf.New(Delimiter)
	}

	if _, ok := s.contexts[name]; ok {
		s.logger.Debug("replacing context", "context", name)
	} else {
		at := len(s.order) - 1
		s.order = slices.Insert(s.order, at, name)
		s.logger.Debug("adding context", "context", name, "position", at)
	}
	s.contexts[name] = layer
	s.changed()
}

// AddContextBefore registers layer under name directly ahead of before. An
// existing context of that name is moved. Sentinels cannot be moved.
func (s *Store) AddContextBefore(before, name string, layer *koanf.Koanf) error {
	if !s.HasContext(before) {
		return domain.ErrRuntime.WithDetailsf("context %q does not exist", before)
	}
	if before == DefaultContext {
		return domain.ErrRuntime.WithDetailsf("cannot insert before the %q context", DefaultContext)
	}
	if isSentinel(name) || name == before {
		return domain.ErrRuntime.WithDetailsf("cannot move context %q", name)
	}
	if layer == nil {
		layer = koanf.New(Delimiter)
	}

	if i := slices.Index(s.order, name); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	at := slices.Index(s.order, before)
	s.order = slices.Insert(s.order, at, name)
	s.contexts[name] = layer
	s.logger.Debug("adding context", "context", name, "before", before)
	s.changed()
	return nil
}

// SetActiveContext selects the context written by Set, creating an empty
// one when name is new.
func (s *Store) SetActiveContext(name string) {
	if !s.HasContext(name) {
		s.AddContext(name, nil)
	}
	s.active = name
}

// ActiveContext returns the name of the active context.
func (s *Store) ActiveContext() string {
	return s.active
}

// Set writes key into the active context.
func (s *Store) Set(key string, value any) error {
	return s.ContextSet(s.active, key, value)
}

// SetDefault writes key into the "default" context.
func (s *Store) SetDefault(key string, value any) error {
	return s.ContextSet(DefaultContext, key, value)
}

// ContextSet writes key into the named context, creating it if needed. The
// active context is unchanged. The value replaces whatever the key held.
// The layer registered for the context is replaced, never modified.
func (s *Store) ContextSet(context, key string, value any) error {
	if key == "" {
		return domain.ErrRuntime.WithDetails("empty configuration key")
	}
	layer, ok := s.contexts[context]
	if !ok {
		s.AddContext(context, nil)
		layer = s.contexts[context]
	}

	if m, ok := value.(map[string]any); ok {
		value = maps.Copy(m)
	}
	// Write into a copy so a failed Set leaves the context untouched.
	next := layer.Copy()
	next.Delete(key)
	if err := next.Set(key, value); err != nil {
		return fmt.Errorf("set %s in context %s: %w", key, context, err)
	}
	s.contexts[context] = next
	s.changed()
	return nil
}

// HasContext reports whether name is registered.
func (s *Store) HasContext(name string) bool {
	_, ok := s.contexts[name]
	return ok
}

// Context returns a copy of the named layer, or nil.
func (s *Store) Context(name string) *koanf.Koanf {
	layer, ok := s.contexts[name]
	if !ok {
		return nil
	}
	return layer.Copy()
}

// ContextNames returns the context names from lowest to highest priority,
// sentinels included.
func (s *Store) ContextNames() []string {
	return slices.Clone(s.order)
}

// Len returns the number of contexts, sentinels included.
func (s *Store) Len() int {
	return len(s.order)
}

// Disambiguate returns name when it is free, otherwise the first free
// name-02, name-03, ...
func (s *Store) Disambiguate(name string) string {
	if !s.HasContext(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%02d", name, i)
		if !s.HasContext(candidate) {
			return candidate
		}
	}
}

// Merged returns a new koanf instance holding every context merged in
// ascending priority. Nested maps merge recursively; any other conflict is
// won by the later value.
func (s *Store) Merged() *koanf.Koanf {
	merged := koanf.New(Delimiter)
	for _, name := range s.order {
		// Merge only fails with StrictMerge, which is not enabled.
		_ = merged.Merge(s.contexts[name])
	}
	return merged
}

// Export returns the merged configuration tree. The result is a fresh copy.
func (s *Store) Export() map[string]any {
	return s.Merged().Raw()
}

// GetRaw returns the merged value of key, without defaults or expansion.
func (s *Store) GetRaw(key string) any {
	return s.Merged().Get(key)
}

func isSentinel(name string) bool {
	return name == DefaultContext || name == ProcessContext
}
