package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// ValidateCommand returns the validate command.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:   "validate",
		Usage:  "Build the configuration and report whether it is valid",
		Action: validateAction,
	}
}

func validateAction(c *cli.Context) error {
	h, err := newConfigHelper(c)
	if err != nil {
		return err
	}
	if _, err := h.Build(); err != nil {
		return err
	}

	fp, err := h.Fingerprint()
	if err != nil {
		return err
	}
	status := "valid"
	if !h.CheckEnabled() {
		status = "built without schema check"
	}
	_, err = fmt.Fprintf(c.App.Writer, "configuration %s (%d contexts, fingerprint %016x)\n",
		status, len(h.ContextNames()), fp)
	return err
}
