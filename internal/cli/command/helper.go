package command

import (
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/core/schema"
	"github.com/yndnr/confhelper-go/internal/core/service"
	"github.com/yndnr/confhelper-go/internal/infra/confloader"
	"github.com/yndnr/confhelper-go/internal/telemetry/metric"
)

// Context names for sources given on the command line.
const (
	EnvContext   = "env"
	FlagsContext = "flags"
)

// DefaultNamePatterns select files for --dir when no --name is given.
var DefaultNamePatterns = []string{"*.yaml", "*.yml", "*.json", "*.jsonc"}

// newConfigHelper builds a ConfigHelper from the global flags. Contexts are
// added in ascending priority: scanned directories, --file in order, the
// environment, then --set overrides.
func newConfigHelper(c *cli.Context, opts ...service.Option) (*service.ConfigHelper, error) {
	flags := ParseGlobalFlags(c)

	opts = append([]service.Option{
		service.WithLogger(Logger(c)),
		service.WithMetrics(metric.Global()),
	}, opts...)
	h, err := service.NewConfigHelper(opts...)
	if err != nil {
		return nil, err
	}

	for _, path := range flags.Schemas {
		f, err := schema.LoadFragmentFile(path)
		if err != nil {
			return nil, err
		}
		if err := h.AddSchema(f); err != nil {
			return nil, err
		}
	}

	if len(flags.Dirs) > 0 {
		names := flags.Names
		if len(names) == 0 {
			names = DefaultNamePatterns
		}
		_, err := h.FindConfigFiles(confloader.ScanOptions{
			Roots:        flags.Dirs,
			PathPatterns: flags.Paths,
			NamePatterns: names,
			SortByName:   flags.ByName,
			Depth:        flags.Depth,
		})
		if err != nil {
			return nil, err
		}
	}

	for _, path := range flags.Files {
		if _, err := h.AddFile(path); err != nil {
			return nil, err
		}
	}

	if flags.EnvPrefix != "" {
		if err := h.AddEnv(EnvContext, flags.EnvPrefix); err != nil {
			return nil, err
		}
	}

	if len(flags.Sets) > 0 {
		data, err := parseAssignments(flags.Sets)
		if err != nil {
			return nil, err
		}
		if err := h.AddArray(FlagsContext, data); err != nil {
			return nil, err
		}
	}

	if flags.NoCheck {
		h.SetCheck(false)
	}
	if flags.NoExpand {
		h.SetExpand(false)
	}
	return h, nil
}

// parseAssignments turns key=value pairs into a map with dotted keys.
// Later assignments to the same key win.
func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, domain.ErrRuntime.WithDetailsf("invalid assignment %q, want key=value", pair)
		}
		out[key] = parseValue(value)
	}
	return out, nil
}

// parseValue reads s as a YAML value so "8080" is an integer and "true" a
// boolean. Unparseable input stays a string.
func parseValue(s string) any {
	if strings.TrimSpace(s) == "" {
		return s
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
