package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/spaolacci/murmur3"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/core/overlay"
	"github.com/yndnr/confhelper-go/internal/core/schema"
	"github.com/yndnr/confhelper-go/internal/infra/confloader"
	"github.com/yndnr/confhelper-go/internal/telemetry/metric"
)

const (
	configBannerTop    = "================== CONFIG =====================================\n"
	configBannerBottom = "===============================================================\n"
)

// Build returns the processed configuration, computing it when the cache
// is empty: export, expand (if enabled), validate against the composed
// schema (if enabled and a schema exists). On failure the cache stays
// empty.
func (h *ConfigHelper) Build() (*koanf.Koanf, error) {
	k, err := h.processedConfig()
	if err != nil {
		return nil, err
	}
	return k.Copy(), nil
}

func (h *ConfigHelper) processedConfig() (*koanf.Koanf, error) {
	if h.processed != nil {
		return h.processed, nil
	}

	start := time.Now()
	k, err := h.build()
	h.observeBuild(start, err)
	if err != nil {
		return nil, err
	}
	h.processed = k
	return k, nil
}

func (h *ConfigHelper) build() (*koanf.Koanf, error) {
	h.logger.Debug("building configuration", "check", h.check, "expand", h.expand)

	data := h.store.Export()
	if h.expand {
		expanded, err := h.expander.Expand(data)
		if err != nil {
			return nil, fmt.Errorf("expand configuration: %w", err)
		}
		data = expanded
	}

	if h.check && !h.composer.Empty() {
		tree, err := h.schemaTree()
		if err != nil {
			return nil, err
		}
		processed, err := schema.Process(tree, data)
		if err != nil {
			return nil, h.validationError(err)
		}
		data = processed
	}

	k := koanf.New(overlay.Delimiter)
	if err := k.Load(confloader.NewArrayLoader().Import("processed", data, false), nil); err != nil {
		return nil, domain.ErrRuntime.WithDetails("load processed configuration").WithCause(err)
	}

	h.logger.Debug("configuration built", "keys", len(k.Keys()))
	return k, nil
}

func (h *ConfigHelper) validationError(cause error) error {
	raw, err := h.DumpRawConfig()
	if err != nil {
		raw = fmt.Sprintf("<unable to dump configuration: %v>\n", err)
	}
	message := configBannerTop + raw + configBannerBottom + cause.Error()
	return domain.ErrValidation.WithDetails(message).WithCause(cause)
}

func (h *ConfigHelper) observeBuild(start time.Time, err error) {
	if h.metrics == nil {
		return
	}
	result := metric.ResultOK
	switch {
	case errors.Is(err, domain.ErrValidation):
		result = metric.ResultInvalid
	case err != nil:
		result = metric.ResultError
	}
	h.metrics.ObserveBuild(result, time.Since(start).Seconds())
}

// ============================================================================
// Reads
// ============================================================================

// Get returns the processed value of key, building if needed. A key absent
// after processing falls back to the schema default, or nil.
func (h *ConfigHelper) Get(key string) (any, error) {
	return h.GetOr(key, nil)
}

// GetOr is Get with an explicit fallback used when neither the processed
// configuration nor the schema provide a value.
func (h *ConfigHelper) GetOr(key string, fallback any) (any, error) {
	k, err := h.processedConfig()
	if err != nil {
		return nil, err
	}
	if k.Exists(key) {
		return k.Get(key), nil
	}
	if def, ok := h.schemaDefault(key); ok {
		return def, nil
	}
	return fallback, nil
}

// schemaTree returns the composed schema, composing it at most once per
// cache generation. It is nil when no schema is registered.
func (h *ConfigHelper) schemaTree() (*schema.Node, error) {
	if h.tree != nil {
		return h.tree, nil
	}
	tree, err := h.composer.BuildTree()
	if err != nil {
		return nil, err
	}
	h.tree = tree
	return tree, nil
}

func (h *ConfigHelper) schemaDefault(key string) (any, bool) {
	if h.composer.Empty() {
		return nil, false
	}
	tree, err := h.schemaTree()
	if err != nil || tree == nil {
		return nil, false
	}
	n := tree.Lookup(strings.Split(key, overlay.Delimiter)...)
	if n == nil || !n.HasDefault {
		return nil, false
	}
	return n.DefaultValue, true
}

// GetRaw returns key from the merged export: no expansion, no defaults.
func (h *ConfigHelper) GetRaw(key string) any {
	return h.store.GetRaw(key)
}

// String returns the processed value of key as a string.
func (h *ConfigHelper) String(key string) (string, error) {
	k, err := h.processedConfig()
	if err != nil {
		return "", err
	}
	return k.String(key), nil
}

// Int returns the processed value of key as an int.
func (h *ConfigHelper) Int(key string) (int, error) {
	k, err := h.processedConfig()
	if err != nil {
		return 0, err
	}
	return k.Int(key), nil
}

// Bool returns the processed value of key as a bool.
func (h *ConfigHelper) Bool(key string) (bool, error) {
	k, err := h.processedConfig()
	if err != nil {
		return false, err
	}
	return k.Bool(key), nil
}

// Unmarshal decodes the processed configuration at path ("" for the whole
// tree) into target using koanf struct tags.
func (h *ConfigHelper) Unmarshal(path string, target any) error {
	k, err := h.processedConfig()
	if err != nil {
		return err
	}
	if err := k.Unmarshal(path, target); err != nil {
		return fmt.Errorf("unmarshal %q: %w", path, err)
	}
	return nil
}

// Built returns a copy of the processed configuration tree.
func (h *ConfigHelper) Built() (map[string]any, error) {
	k, err := h.processedConfig()
	if err != nil {
		return nil, err
	}
	return k.Raw(), nil
}

// Fingerprint returns a 64-bit murmur3 hash of the processed
// configuration. Equal configurations hash equally regardless of the
// contexts they came from.
func (h *ConfigHelper) Fingerprint() (uint64, error) {
	k, err := h.processedConfig()
	if err != nil {
		return 0, err
	}
	// encoding/json sorts map keys, which makes the encoding canonical.
	data, err := json.Marshal(k.Raw())
	if err != nil {
		return 0, domain.ErrRuntime.WithDetails("encode configuration").WithCause(err)
	}
	return murmur3.Sum64(data), nil
}
