package service

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/v2"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/core/overlay"
	"github.com/yndnr/confhelper-go/internal/core/schema"
	"github.com/yndnr/confhelper-go/internal/infra/confloader"
	"github.com/yndnr/confhelper-go/internal/infra/expander"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
	"github.com/yndnr/confhelper-go/internal/telemetry/metric"
)

// FileLoader turns a configuration file into a layer.
type FileLoader interface {
	Load(path string) (*koanf.Koanf, error)
}

// EnvLoader turns prefixed environment variables into a layer.
type EnvLoader interface {
	Load(prefix string) (*koanf.Koanf, error)
}

// Scanner discovers configuration files.
type Scanner interface {
	Scan(opts confloader.ScanOptions) ([]confloader.FileInfo, error)
}

// Expander resolves placeholders. It must not modify its input.
type Expander interface {
	Expand(data map[string]any) (map[string]any, error)
}

// ConfigHelper merges contexts, expands placeholders and validates the
// result against a composed schema.
type ConfigHelper struct {
	store    *overlay.Store
	composer *schema.Composer

	fileLoader FileLoader
	envLoader  EnvLoader
	scanner    Scanner
	expander   Expander
	logger     logger.Logger
	metrics    *metric.Registry

	check  bool
	expand bool
	redact bool

	// processed is the cached build result; nil means absent.
	processed *koanf.Koanf
	// tree is the cached composed schema, cleared with processed.
	tree *schema.Node
	// files maps context names to the file they were loaded from.
	files map[string]string
}

// Option configures a ConfigHelper.
type Option func(*config)

type config struct {
	schema     schema.Fragment
	fileLoader FileLoader
	envLoader  EnvLoader
	scanner    Scanner
	expander   Expander
	logger     logger.Logger
	debug      io.Writer
	metrics    *metric.Registry
	redact     bool
}

// WithSchema registers an initial schema fragment and enables checking.
func WithSchema(f schema.Fragment) Option {
	return func(c *config) { c.schema = f }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithDebug sends debug output to w when no logger is configured.
func WithDebug(w io.Writer) Option {
	return func(c *config) { c.debug = w }
}

// WithExpander replaces the default expander.
func WithExpander(e Expander) Option {
	return func(c *config) { c.expander = e }
}

// WithFileLoader replaces the default file loader.
func WithFileLoader(l FileLoader) Option {
	return func(c *config) { c.fileLoader = l }
}

// WithEnvLoader replaces the default environment loader.
func WithEnvLoader(l EnvLoader) Option {
	return func(c *config) { c.envLoader = l }
}

// WithScanner replaces the default directory scanner.
func WithScanner(s Scanner) Option {
	return func(c *config) { c.scanner = s }
}

// WithMetrics records build metrics into r.
func WithMetrics(r *metric.Registry) Option {
	return func(c *config) { c.metrics = r }
}

// WithRedaction masks sensitive values in every dump.
func WithRedaction() Option {
	return func(c *config) { c.redact = true }
}

// NewConfigHelper creates a helper. Checking starts enabled only when a
// schema is given; expansion starts enabled.
func NewConfigHelper(opts ...Option) (*ConfigHelper, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	log := cfg.logger
	switch {
	case log != nil:
	case cfg.debug != nil:
		log = logger.NewDebugSink(cfg.debug)
	default:
		log = logger.Nop()
	}

	h := &ConfigHelper{
		store:      overlay.New(overlay.WithLogger(log)),
		composer:   schema.NewComposer(log),
		fileLoader: cfg.fileLoader,
		envLoader:  cfg.envLoader,
		scanner:    cfg.scanner,
		expander:   cfg.expander,
		logger:     log,
		metrics:    cfg.metrics,
		expand:     true,
		redact:     cfg.redact,
		files:      make(map[string]string),
	}
	if h.fileLoader == nil {
		h.fileLoader = confloader.NewFileLoader(confloader.WithLogger(log))
	}
	if h.envLoader == nil {
		h.envLoader = confloader.NewEnvLoader(confloader.WithLogger(log))
	}
	if h.scanner == nil {
		h.scanner = confloader.NewDirScanner(confloader.WithLogger(log))
	}
	if h.expander == nil {
		h.expander = expander.New(expander.WithLogger(log))
	}

	h.store.OnChange(h.contextsChanged)
	h.contextsChanged()

	if cfg.schema != nil {
		if err := h.SetSchema(cfg.schema); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *ConfigHelper) contextsChanged() {
	h.invalidate()
	if h.metrics != nil {
		h.metrics.SetContexts(h.store.Len())
	}
}

func (h *ConfigHelper) invalidate() {
	h.processed = nil
	h.tree = nil
}

// ============================================================================
// Schema and Options
// ============================================================================

// SetSchema registers the first schema fragment and enables checking. It
// fails once any fragment is registered.
func (h *ConfigHelper) SetSchema(f schema.Fragment) error {
	if !h.composer.Empty() {
		return domain.ErrSchema.WithDetails("schema already set, use AddSchema for multi-schema support")
	}
	if err := h.composer.Add(f); err != nil {
		return err
	}
	h.check = true
	h.invalidate()
	return nil
}

// AddSchema registers another schema fragment. The first fragment goes
// through SetSchema.
func (h *ConfigHelper) AddSchema(f schema.Fragment) error {
	if h.composer.Empty() {
		return h.SetSchema(f)
	}
	if err := h.composer.Add(f); err != nil {
		return err
	}
	h.invalidate()
	return nil
}

// SetCheck toggles schema validation.
func (h *ConfigHelper) SetCheck(enabled bool) *ConfigHelper {
	h.check = enabled
	h.invalidate()
	return h
}

// SetExpand toggles placeholder expansion.
func (h *ConfigHelper) SetExpand(enabled bool) *ConfigHelper {
	h.expand = enabled
	h.invalidate()
	return h
}

// CheckEnabled reports whether validation is on.
func (h *ConfigHelper) CheckEnabled() bool {
	return h.check
}

// ExpandEnabled reports whether expansion is on.
func (h *ConfigHelper) ExpandEnabled() bool {
	return h.expand
}

// ============================================================================
// Contexts
// ============================================================================

// AddContext registers or replaces a context.
func (h *ConfigHelper) AddContext(name string, layer *koanf.Koanf) {
	delete(h.files, name)
	h.store.AddContext(name, layer)
}

// AddArray registers a context built from a map. Dotted keys are expanded.
func (h *ConfigHelper) AddArray(name string, data map[string]any) error {
	layer, err := confloader.LoadMap(data)
	if err != nil {
		return err
	}
	h.logger.Debug("adding array context", "context", name)
	h.AddContext(name, layer)
	return nil
}

// AddFile loads path into a context named after the file's base name
// without extension. A name already in use gets a -02, -03, ... suffix.
func (h *ConfigHelper) AddFile(path string) (string, error) {
	base := filepath.Base(path)
	name := h.store.Disambiguate(strings.TrimSuffix(base, filepath.Ext(base)))
	if err := h.AddNamedFile(name, path); err != nil {
		return "", err
	}
	return name, nil
}

// AddNamedFile loads path into the named context, replacing it if present.
func (h *ConfigHelper) AddNamedFile(name, path string) error {
	layer, err := h.fileLoader.Load(path)
	if err != nil {
		return err
	}
	h.logger.Debug("adding file context", "context", name, "path", path)
	h.store.AddContext(name, layer)
	h.files[name] = path
	return nil
}

// FindConfigFiles scans for files and adds each one with AddFile, in scan
// order. It returns the context names created.
func (h *ConfigHelper) FindConfigFiles(opts confloader.ScanOptions) ([]string, error) {
	files, err := h.scanner.Scan(opts)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		name, err := h.AddFile(f.Path)
		if err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// ReloadFile reloads every context that was loaded from path. It returns
// the reloaded context names.
func (h *ConfigHelper) ReloadFile(path string) ([]string, error) {
	var names []string
	for _, name := range h.store.ContextNames() {
		src, ok := h.files[name]
		if !ok || !samePath(src, path) {
			continue
		}
		if err := h.AddNamedFile(name, src); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Files returns the files backing file contexts, keyed by context name.
func (h *ConfigHelper) Files() map[string]string {
	out := make(map[string]string, len(h.files))
	for k, v := range h.files {
		out[k] = v
	}
	return out
}

// AddEnv registers a context from environment variables starting with
// prefix.
func (h *ConfigHelper) AddEnv(name, prefix string) error {
	layer, err := h.envLoader.Load(prefix)
	if err != nil {
		return err
	}
	h.logger.Debug("adding environment context", "context", name, "prefix", prefix)
	h.AddContext(name, layer)
	return nil
}

// SetActiveContext selects the context written by Set.
func (h *ConfigHelper) SetActiveContext(name string) {
	h.store.SetActiveContext(name)
}

// ActiveContext returns the active context name.
func (h *ConfigHelper) ActiveContext() string {
	return h.store.ActiveContext()
}

// Set writes key into the active context.
func (h *ConfigHelper) Set(key string, value any) error {
	return h.store.Set(key, value)
}

// SetDefault writes key into the "default" context.
func (h *ConfigHelper) SetDefault(key string, value any) error {
	return h.store.SetDefault(key, value)
}

// ContextSet writes key into the named context without changing the
// active context.
func (h *ConfigHelper) ContextSet(context, key string, value any) error {
	return h.store.ContextSet(context, key, value)
}

// ContextNames lists contexts from lowest to highest priority.
func (h *ConfigHelper) ContextNames() []string {
	return h.store.ContextNames()
}

// Context returns a copy of the named context, or nil.
func (h *ConfigHelper) Context(name string) *koanf.Koanf {
	return h.store.Context(name)
}

// Export returns the merged, unprocessed configuration.
func (h *ConfigHelper) Export() map[string]any {
	return h.store.Export()
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
