package config

import (
	"time"

	"github.com/yndnr/confhelper-go/internal/core/schema"
)

// CLIConfig is the configuration for the confhelper CLI.
type CLIConfig struct {
	// Output is the default output format: yaml, json or table.
	Output string `koanf:"output" yaml:"output"`
	// Redact masks sensitive values in dumps.
	Redact bool `koanf:"redact" yaml:"redact"`

	Log   LogConfig   `koanf:"log" yaml:"log"`
	Scan  ScanConfig  `koanf:"scan" yaml:"scan"`
	Watch WatchConfig `koanf:"watch" yaml:"watch"`
}

// LogConfig configures diagnostic logging on stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// ScanConfig holds defaults for directory scanning.
type ScanConfig struct {
	// Depth limits recursion below each root; negative is unlimited.
	Depth int `koanf:"depth" yaml:"depth"`
	// Sort orders discovered files by base name instead of path.
	Sort bool `koanf:"sort" yaml:"sort"`
}

// WatchConfig configures `confhelper watch`.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce" yaml:"debounce"`
	// Metrics is the listen address of the status and metrics endpoint; empty
	// disables it.
	Metrics string `koanf:"metrics" yaml:"metrics"`
}

// Default returns the default CLI configuration. It matches what Load
// produces when no file or environment overrides exist.
func Default() *CLIConfig {
	return &CLIConfig{
		Output: "yaml",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Scan: ScanConfig{
			Depth: -1,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// Fragment returns the schema of the CLI settings. Numeric and boolean
// settings are scalars so string values from the environment are accepted
// and converted while decoding.
func Fragment() schema.Fragment {
	return schema.FragmentFunc(func() *schema.Node {
		return schema.Array("",
			schema.Scalar("output").Default("yaml").Allow("yaml", "json", "table").
				Info("Default output format."),
			schema.Scalar("redact").Default(false).
				Info("Mask sensitive values (passwords, tokens, keys) in dumps."),
			schema.Array("log",
				schema.Scalar("level").Default("warn").Allow("debug", "info", "warn", "error"),
				schema.Scalar("format").Default("text").Allow("text", "json"),
			).DefaultsIfNotSet(),
			schema.Array("scan",
				schema.Scalar("depth").Default(-1).
					Info("Directory recursion limit, negative for unlimited."),
				schema.Scalar("sort").Default(false).
					Info("Sort discovered files by name instead of path."),
			).DefaultsIfNotSet(),
			schema.Array("watch",
				schema.Scalar("debounce").Default("200ms"),
				schema.Scalar("metrics").Default("").Example(":9090").
					Info("Prometheus listen address, empty to disable."),
			).DefaultsIfNotSet(),
		)
	})
}
