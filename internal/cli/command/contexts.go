package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/confhelper-go/internal/core/service"
)

// contextInfo describes one context in priority order.
type contextInfo struct {
	Priority int    `yaml:"priority" json:"priority"`
	Name     string `yaml:"name" json:"name"`
	Keys     int    `yaml:"keys" json:"keys"`
	Active   bool   `yaml:"active" json:"active"`
	Source   string `yaml:"source,omitempty" json:"source,omitempty" table:"wide"`
}

// ContextsCommand returns the contexts command.
func ContextsCommand() *cli.Command {
	return &cli.Command{
		Name:   "contexts",
		Usage:  "List contexts from lowest to highest priority",
		Action: contextsAction,
	}
}

func contextsAction(c *cli.Context) error {
	h, err := newConfigHelper(c)
	if err != nil {
		return err
	}
	return render(c, listContexts(h))
}

func listContexts(h *service.ConfigHelper) []contextInfo {
	files := h.Files()
	active := h.ActiveContext()

	names := h.ContextNames()
	out := make([]contextInfo, 0, len(names))
	for i, name := range names {
		info := contextInfo{
			Priority: i,
			Name:     name,
			Keys:     len(h.Context(name).Keys()),
			Active:   name == active,
			Source:   files[name],
		}
		switch {
		case info.Source != "":
		case name == EnvContext:
			info.Source = "environment"
		case name == FlagsContext:
			info.Source = "--set"
		}
		out = append(out, info)
	}
	return out
}
