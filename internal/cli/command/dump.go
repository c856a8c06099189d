package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confhelper-go/internal/cli/output"
	"github.com/yndnr/confhelper-go/internal/core/service"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// DumpCommand returns the dump command.
func DumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Print the configuration",
		Description: "Modes: built (validated, defaults applied), raw (merged, no expansion or defaults),\n" +
			"contexts (every context separately, in priority order; always text).",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Dump mode: " + strings.Join(service.DumpModes, ", "),
				Value:   service.DumpBuilt,
			},
			&cli.BoolFlag{
				Name:  "redact",
				Usage: "Mask sensitive values (passwords, tokens, keys)",
			},
		},
		Action: dumpAction,
	}
}

func dumpAction(c *cli.Context) error {
	redact := c.Bool("redact") || Settings(c).Redact

	var opts []service.Option
	if redact {
		opts = append(opts, service.WithRedaction())
	}
	h, err := newConfigHelper(c, opts...)
	if err != nil {
		return err
	}

	mode := c.String("mode")
	if ParseGlobalFlags(c).Output == output.FormatYAML || mode == service.DumpContexts {
		s, err := h.Dump(mode)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(c.App.Writer, s)
		return err
	}

	var data map[string]any
	switch mode {
	case service.DumpBuilt:
		if data, err = h.Built(); err != nil {
			return err
		}
	case service.DumpRaw:
		data = h.Export()
	default:
		_, err := h.Dump(mode)
		return err
	}
	if redact {
		data = logger.RedactTree(data)
	}
	return render(c, data)
}
