package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/core/service"
	"github.com/yndnr/confhelper-go/internal/infra/confloader"
)

// EnvPrefix selects the environment variables read into the CLI settings.
// CONFHELPER_CLI_LOG_LEVEL sets log.level.
const EnvPrefix = "CONFHELPER_CLI_"

// ConfigPathEnv names the settings file. It shares EnvPrefix but is never
// read as a setting.
const ConfigPathEnv = EnvPrefix + "CONFIG"

// Context names used by the settings helper.
const (
	FileContext = "file"
	EnvContext  = "env"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "confhelper", "cli.yaml")
}

// NewHelper returns a ConfigHelper holding the CLI settings: the schema
// defaults, the file at path and the CONFHELPER_CLI_* environment. An
// empty path uses DefaultConfigPath and tolerates its absence; an explicit
// path must exist.
func NewHelper(path string, opts ...service.Option) (*service.ConfigHelper, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	opts = append([]service.Option{
		service.WithSchema(Fragment()),
		service.WithEnvLoader(confloader.NewEnvLoader(confloader.WithExcludedEnv(ConfigPathEnv))),
	}, opts...)
	h, err := service.NewConfigHelper(opts...)
	if err != nil {
		return nil, err
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		if err := h.AddNamedFile(FileContext, path); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, domain.ErrLoad.WithDetailsf("CLI config %s", path).WithCause(err)
	}

	if err := h.AddEnv(EnvContext, EnvPrefix); err != nil {
		return nil, err
	}
	return h, nil
}

// Load builds and decodes the CLI settings. See NewHelper for the sources.
func Load(path string, opts ...service.Option) (*CLIConfig, error) {
	h, err := NewHelper(path, opts...)
	if err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if err := h.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
