package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/confhelper-go/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	want := filepath.Join(dir, "confhelper", "cli.yaml")
	if got := DefaultConfigPath(); got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
}

func TestLoad_DefaultsMatchDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %+v, want %+v", cfg, Default())
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cli.yaml", `
output: json
redact: true
log:
  level: debug
scan:
  depth: 2
watch:
  debounce: 1s
  metrics: ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &CLIConfig{
		Output: "json",
		Redact: true,
		Log:    LogConfig{Level: "debug", Format: "text"},
		Scan:   ScanConfig{Depth: 2},
		Watch:  WatchConfig{Debounce: time.Second, Metrics: ":9090"},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_DefaultPathFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	if err := os.MkdirAll(filepath.Join(home, "confhelper"), 0o700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(home, "confhelper"), "cli.yaml", "output: table\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want %q", cfg.Output, "table")
	}
}

func TestLoad_ConfigPathEnvIsNotASetting(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cli.yaml", "output: json\n")
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q, want %q", cfg.Output, "json")
	}

	h, err := NewHelper(path)
	if err != nil {
		t.Fatal(err)
	}
	if env := h.Context(EnvContext); env != nil && env.Exists("config") {
		t.Errorf("env context holds config = %q", env.String("config"))
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cli.yaml", "output: json\nscan:\n  depth: 2\n")

	t.Setenv("CONFHELPER_CLI_OUTPUT", "table")
	t.Setenv("CONFHELPER_CLI_SCAN_DEPTH", "5")
	t.Setenv("CONFHELPER_CLI_SCAN_SORT", "true")
	t.Setenv("CONFHELPER_CLI_WATCH_DEBOUNCE", "50ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want %q", cfg.Output, "table")
	}
	if cfg.Scan.Depth != 5 {
		t.Errorf("Scan.Depth = %d, want 5", cfg.Scan.Depth)
	}
	if !cfg.Scan.Sort {
		t.Error("Scan.Sort should be true")
	}
	if cfg.Watch.Debounce != 50*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 50ms", cfg.Watch.Debounce)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		env     map[string]string
		wantErr error
		detail  string
	}{
		{
			name:    "explicit missing file",
			path:    filepath.Join(dir, "missing.yaml"),
			wantErr: domain.ErrLoad,
		},
		{
			name:    "unknown key",
			path:    writeFile(t, dir, "unknown.yaml", "colour: always\n"),
			wantErr: domain.ErrValidation,
			detail:  `unrecognized option "colour"`,
		},
		{
			name:    "disallowed output",
			path:    writeFile(t, dir, "output.yaml", "output: xml\n"),
			wantErr: domain.ErrValidation,
			detail:  `the value "xml" is not allowed for path "schema.output"`,
		},
		{
			name:    "disallowed level from env",
			path:    "",
			env:     map[string]string{"CONFHELPER_CLI_LOG_LEVEL": "trace"},
			wantErr: domain.ErrValidation,
			detail:  `path "schema.log.level"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if tt.detail != "" && !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q should contain %q", err.Error(), tt.detail)
			}
		})
	}
}

func TestNewHelper_Contexts(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cli.yaml", "output: json\n")

	h, err := NewHelper(path)
	if err != nil {
		t.Fatalf("NewHelper() error = %v", err)
	}

	want := []string{"default", FileContext, EnvContext, "process"}
	if got := h.ContextNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ContextNames() = %v, want %v", got, want)
	}

	ref, err := h.DumpSchema()
	if err != nil {
		t.Fatalf("DumpSchema() error = %v", err)
	}
	if !strings.Contains(ref, "# One of yaml; json; table") {
		t.Errorf("DumpSchema() should list the allowed output formats:\n%s", ref)
	}
}
