package confloader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "CONFHELPER_"

// Delimiter separates path segments in configuration keys.
const Delimiter = "."

// FileLoader parses configuration files into koanf layers.
type FileLoader struct {
	logger logger.Logger
}

// Option is a function that configures the loaders.
type Option func(*options)

type options struct {
	logger  logger.Logger
	exclude map[string]struct{}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithExcludedEnv keeps the named environment variables out of layers
// produced by EnvLoader.
func WithExcludedEnv(names ...string) Option {
	return func(o *options) {
		if o.exclude == nil {
			o.exclude = make(map[string]struct{}, len(names))
		}
		for _, n := range names {
			o.exclude[n] = struct{}{}
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Nop()
	}
	return o
}

// NewFileLoader creates a file loader.
func NewFileLoader(opts ...Option) *FileLoader {
	o := buildOptions(opts)
	return &FileLoader{logger: o.logger}
}

// ParserFor returns the parser matching the file's extension.
func ParserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json", ".jsonc":
		return JSONCParser(), nil
	default:
		return nil, domain.ErrLoad.WithDetailsf("unsupported configuration format %q for %s", filepath.Ext(path), path)
	}
}

// Load reads and parses a single file. An empty file yields an empty layer.
func (l *FileLoader) Load(path string) (*koanf.Koanf, error) {
	parser, err := ParserFor(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.ErrLoad.WithDetailsf("stat %s", path).WithCause(err)
	}
	if info.IsDir() {
		return nil, domain.ErrLoad.WithDetailsf("%s is a directory", path)
	}

	k := koanf.New(Delimiter)
	if info.Size() == 0 {
		l.logger.Debug("configuration file is empty", "path", path)
		return k, nil
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, domain.ErrLoad.WithDetailsf("parse %s", path).WithCause(err)
	}

	l.logger.Debug("configuration file loaded", "path", path, "keys", len(k.Keys()))
	return k, nil
}

// EnvLoader reads prefixed environment variables into koanf layers.
type EnvLoader struct {
	logger  logger.Logger
	exclude map[string]struct{}
}

// NewEnvLoader creates an environment loader.
func NewEnvLoader(opts ...Option) *EnvLoader {
	o := buildOptions(opts)
	return &EnvLoader{logger: o.logger, exclude: o.exclude}
}

// Load collects variables starting with prefix. Names are transformed by
// stripping the prefix, lowercasing and turning underscores into dots:
// CONFHELPER_SERVER_HTTP_ADDRESS becomes server.http.address.
func (l *EnvLoader) Load(prefix string) (*koanf.Koanf, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	envTransformer := func(s string) string {
		// An empty key makes the provider skip the variable.
		if _, ok := l.exclude[s]; ok {
			return ""
		}
		s = strings.TrimPrefix(s, prefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", Delimiter)
	}

	k := koanf.New(Delimiter)
	if err := k.Load(env.Provider(prefix, Delimiter, envTransformer), nil); err != nil {
		return nil, domain.ErrLoad.WithDetailsf("environment %s*", prefix).WithCause(err)
	}

	l.logger.Debug("environment loaded", "prefix", prefix, "keys", len(k.Keys()))
	return k, nil
}

// LoadMap builds a layer from a map, expanding dotted keys.
func LoadMap(data map[string]any) (*koanf.Koanf, error) {
	k := koanf.New(Delimiter)
	if err := k.Load(NewArrayLoader().Import("map", data, true), nil); err != nil {
		return nil, domain.ErrLoad.WithDetails("load map").WithCause(err)
	}
	return k, nil
}
