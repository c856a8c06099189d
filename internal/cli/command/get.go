package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/confhelper-go/internal/core/domain"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print one value of the configuration",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Read the merged value without expansion, validation or defaults",
			},
			&cli.StringFlag{
				Name:  "default",
				Usage: "Value to print when the key is not set (parsed as YAML)",
			},
		},
		Action: getAction,
	}
}

func getAction(c *cli.Context) error {
	key := c.Args().First()
	if key == "" {
		return domain.ErrRuntime.WithDetails("missing KEY argument")
	}

	h, err := newConfigHelper(c)
	if err != nil {
		return err
	}

	var value any
	switch {
	case c.Bool("raw"):
		value = h.GetRaw(key)
		if value == nil && c.IsSet("default") {
			value = parseValue(c.String("default"))
		}
	case c.IsSet("default"):
		value, err = h.GetOr(key, parseValue(c.String("default")))
	default:
		value, err = h.Get(key)
	}
	if err != nil {
		return err
	}
	if value == nil && !c.IsSet("default") {
		return domain.ErrRuntime.WithDetailsf("key %q is not set", key)
	}
	return render(c, value)
}
