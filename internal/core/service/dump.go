package service

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/core/schema"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// Dump modes.
const (
	DumpBuilt    = "built"
	DumpRaw      = "raw"
	DumpContexts = "contexts"
)

const bannerWidth = 60

// DumpModes lists the accepted Dump modes.
var DumpModes = []string{DumpBuilt, DumpRaw, DumpContexts}

// Dump renders the configuration in the given mode: "built" (processed),
// "raw" (merged export) or "contexts" (each context separately).
func (h *ConfigHelper) Dump(mode string) (string, error) {
	switch mode {
	case DumpBuilt:
		return h.DumpConfig()
	case DumpRaw:
		return h.DumpRawConfig()
	case DumpContexts:
		return h.DumpContexts()
	default:
		return "", domain.ErrRuntime.WithDetailsf("Unknown dump mode '%s'", mode)
	}
}

// DumpConfig renders the processed configuration as YAML, building first
// if needed.
func (h *ConfigHelper) DumpConfig() (string, error) {
	data, err := h.Built()
	if err != nil {
		return "", err
	}
	return h.renderYAML(data)
}

// DumpRawConfig renders the merged export as YAML.
func (h *ConfigHelper) DumpRawConfig() (string, error) {
	return h.renderYAML(h.store.Export())
}

// DumpContexts renders every context in priority order, each under a
// banner naming it. Empty contexts render as {}.
func (h *ConfigHelper) DumpContexts() (string, error) {
	banner := strings.Repeat("=", bannerWidth) + "\n"

	var b strings.Builder
	for _, name := range h.store.ContextNames() {
		title := "CONTEXT : " + name
		pad := (bannerWidth - len(title)) / 2
		if pad < 0 {
			pad = 0
		}

		b.WriteString(banner)
		b.WriteString(strings.Repeat(" ", pad) + title + "\n")
		b.WriteString(banner)

		out, err := h.renderYAML(h.store.Context(name).Raw())
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// DumpSchema renders a reference listing of the composed schema. It is
// empty when no schema is registered.
func (h *ConfigHelper) DumpSchema() (string, error) {
	tree, err := h.schemaTree()
	if err != nil {
		return "", err
	}
	return schema.DumpReference(tree), nil
}

func (h *ConfigHelper) renderYAML(data map[string]any) (string, error) {
	if h.redact {
		data = logger.RedactTree(data)
	}
	return MarshalYAML(data)
}

// MarshalYAML encodes v as block YAML with two-space indentation.
func MarshalYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", domain.ErrRuntime.WithDetails("encode yaml").WithCause(err)
	}
	if err := enc.Close(); err != nil {
		return "", domain.ErrRuntime.WithDetails("encode yaml").WithCause(err)
	}
	return buf.String(), nil
}
