package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confhelper-go/internal/cli/config"
	"github.com/yndnr/confhelper-go/internal/cli/output"
	"github.com/yndnr/confhelper-go/internal/infra/buildinfo"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// App metadata keys.
const (
	metaSettings = "settings"
	metaLogger   = "logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "confhelper",
		Usage:   "Merge, expand and validate layered configuration",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			DumpCommand(),
			GetCommand(),
			SchemaCommand(),
			ValidateCommand(),
			ContextsCommand(),
			WatchCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before:                    before,
		DisableSliceFlagSeparator: true,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI settings file (default ~/.config/confhelper/cli.yaml)",
			EnvVars: []string{config.ConfigPathEnv},
		},
		&cli.StringSliceFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Configuration file to add as a context (repeatable with the same form, later wins)",
		},
		&cli.StringSliceFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "Directory to scan for configuration files (repeatable with the same form)",
		},
		&cli.StringSliceFlag{
			Name:  "name",
			Usage: "File name pattern for --dir, e.g. '*.yaml' (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "path",
			Usage: "Sub-directory pattern for --dir relative to the root (repeatable)",
		},
		&cli.IntFlag{
			Name:  "depth",
			Usage: "Directory recursion limit for --dir, negative for unlimited",
		},
		&cli.BoolFlag{
			Name:  "sort-by-name",
			Usage: "Order files found by --dir by name instead of path",
		},
		&cli.StringSliceFlag{
			Name:    "schema",
			Aliases: []string{"s"},
			Usage:   "Schema descriptor file (repeatable with the same form, the nameless root fragment first)",
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Override a value: key=value, value parsed as YAML (repeatable)",
		},
		&cli.StringFlag{
			Name:  "env-prefix",
			Usage: "Add environment variables with this prefix as a context",
		},
		&cli.BoolFlag{
			Name:  "no-check",
			Usage: "Skip schema validation",
		},
		&cli.BoolFlag{
			Name:  "no-expand",
			Usage: "Leave ${...} placeholders untouched",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: yaml, json, table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// GlobalFlags defines flags available to all commands, with unset flags
// filled from the CLI settings.
type GlobalFlags struct {
	Config string

	// Sources
	Files     []string
	Dirs      []string
	Names     []string
	Paths     []string
	Depth     int
	ByName    bool
	Schemas   []string
	Sets      []string
	EnvPrefix string

	// Build toggles
	NoCheck  bool
	NoExpand bool

	// Output format
	Output output.Format
	Wide   bool

	LogLevel string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	settings := Settings(c)

	flags := &GlobalFlags{
		Config:    c.String("config"),
		Files:     c.StringSlice("file"),
		Dirs:      c.StringSlice("dir"),
		Names:     c.StringSlice("name"),
		Paths:     c.StringSlice("path"),
		Depth:     settings.Scan.Depth,
		ByName:    settings.Scan.Sort || c.Bool("sort-by-name"),
		Schemas:   c.StringSlice("schema"),
		Sets:      c.StringSlice("set"),
		EnvPrefix: c.String("env-prefix"),
		NoCheck:   c.Bool("no-check"),
		NoExpand:  c.Bool("no-expand"),
		Output:    output.Format(settings.Output),
		Wide:      c.Bool("wide"),
		LogLevel:  settings.Log.Level,
	}
	if c.IsSet("depth") {
		flags.Depth = c.Int("depth")
	}
	if c.IsSet("output") {
		flags.Output = output.Format(c.String("output"))
	}
	if c.IsSet("log-level") {
		flags.LogLevel = c.String("log-level")
	}
	return flags
}

// before loads the CLI settings and sets up logging.
func before(c *cli.Context) error {
	settings, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load CLI settings: %w", err)
	}
	c.App.Metadata[metaSettings] = settings

	flags := ParseGlobalFlags(c)
	if _, err := output.ParseFormat(string(flags.Output)); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  flags.LogLevel,
		Format: settings.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	c.App.Metadata[metaLogger] = log
	return nil
}

// Settings returns the CLI settings loaded by the Before hook, or the
// defaults when it has not run.
func Settings(c *cli.Context) *config.CLIConfig {
	if s, ok := c.App.Metadata[metaSettings].(*config.CLIConfig); ok {
		return s
	}
	return config.Default()
}

// Logger returns the logger created by the Before hook, or a no-op logger.
func Logger(c *cli.Context) logger.Logger {
	if l, ok := c.App.Metadata[metaLogger].(logger.Logger); ok {
		return l
	}
	return logger.Nop()
}

// render writes data to the app's writer in the selected format.
func render(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
