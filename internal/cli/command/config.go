package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confhelper-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group for the CLI's own
// settings.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI settings",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI settings",
				Action: configShow,
			},
			{
				Name:   "reference",
				Usage:  "Show every CLI setting with its default",
				Action: configReference,
			},
			{
				Name:  "path",
				Usage: "Show the CLI settings file path",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, settingsPath(c))
					return err
				},
			},
		},
	}
}

func settingsPath(c *cli.Context) string {
	if path := c.String("config"); path != "" {
		return path
	}
	return config.DefaultConfigPath()
}

func configShow(c *cli.Context) error {
	h, err := config.NewHelper(c.String("config"))
	if err != nil {
		return err
	}
	data, err := h.Built()
	if err != nil {
		return err
	}
	return render(c, data)
}

func configReference(c *cli.Context) error {
	h, err := config.NewHelper(c.String("config"))
	if err != nil {
		return err
	}
	ref, err := h.DumpSchema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.App.Writer, ref)
	return err
}
