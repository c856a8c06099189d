package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/confhelper-go/internal/core/domain"
)

// SchemaCommand returns the schema command.
func SchemaCommand() *cli.Command {
	return &cli.Command{
		Name:   "schema",
		Usage:  "Print the reference of the composed schema",
		Action: schemaAction,
	}
}

func schemaAction(c *cli.Context) error {
	h, err := newConfigHelper(c)
	if err != nil {
		return err
	}

	ref, err := h.DumpSchema()
	if err != nil {
		return err
	}
	if ref == "" {
		return domain.ErrRuntime.WithDetails("no schema given, use --schema")
	}
	_, err = fmt.Fprint(c.App.Writer, ref)
	return err
}
