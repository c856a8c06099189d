// Package expander resolves ${key} placeholders inside a configuration tree.
//
// A placeholder names a dotted path in the same tree ("${db.host}"). The
// "env." namespace falls back to the process environment when the tree has
// no such key ("${env.HOME}"). Unresolvable placeholders are left verbatim.
package expander

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/knadh/koanf/maps"

	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// DefaultMaxPasses bounds the number of substitution rounds, which stops
// self-referencing placeholders from expanding forever.
const DefaultMaxPasses = 10

const envNamespace = "env."

// placeholderPattern matches ${name} references. Names are dotted paths.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_\-]+(?:\.[A-Za-z0-9_\-]+)*)\}`)

// Expander substitutes placeholders until a fixed point is reached.
type Expander struct {
	logger    logger.Logger
	lookupEnv func(string) (string, bool)
	maxPasses int
}

// Option configures an Expander.
type Option func(*Expander)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Expander) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEnviron replaces os.LookupEnv, mostly for tests.
func WithEnviron(lookup func(string) (string, bool)) Option {
	return func(e *Expander) {
		e.lookupEnv = lookup
	}
}

// WithMaxPasses sets the pass limit.
func WithMaxPasses(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// New creates an expander.
func New(opts ...Option) *Expander {
	e := &Expander{
		logger:    logger.Nop(),
		lookupEnv: os.LookupEnv,
		maxPasses: DefaultMaxPasses,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns a copy of data with placeholders resolved. A string that is
// exactly one placeholder takes the referenced value with its type; embedded
// placeholders are replaced by the value's text form. The input is never
// modified and the result shares no maps or slices with it.
func (e *Expander) Expand(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	out := maps.Copy(data)

	for pass := 1; ; pass++ {
		changed := false
		out = e.walk(out, out, &changed).(map[string]any)
		if !changed {
			e.logger.Debug("expansion finished", "passes", pass)
			return out, nil
		}
		if pass >= e.maxPasses {
			e.logger.Warn("expansion stopped at pass limit, placeholders may be cyclic", "passes", pass)
			return out, nil
		}
	}
}

func (e *Expander) walk(v any, root map[string]any, changed *bool) any {
	switch val := v.(type) {
	case map[string]any:
		next := make(map[string]any, len(val))
		for k, child := range val {
			next[k] = e.walk(child, root, changed)
		}
		return next
	case []any:
		next := make([]any, len(val))
		for i, child := range val {
			next[i] = e.walk(child, root, changed)
		}
		return next
	case string:
		return e.expandString(val, root, changed)
	default:
		return v
	}
}

func (e *Expander) expandString(s string, root map[string]any, changed *bool) any {
	if !strings.Contains(s, "${") {
		return s
	}

	// Whole-string placeholder keeps the referenced type.
	if m := placeholderPattern.FindStringSubmatchIndex(s); m != nil && m[0] == 0 && m[1] == len(s) {
		if value, ok := e.lookup(s[m[2]:m[3]], root); ok {
			*changed = true
			return copyValue(value)
		}
		return s
	}

	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := e.lookup(name, root)
		if !ok {
			return match
		}
		text, ok := scalarText(value)
		if !ok {
			return match
		}
		*changed = true
		return text
	})
}

func (e *Expander) lookup(name string, root map[string]any) (any, bool) {
	if value := maps.Search(root, strings.Split(name, ".")); value != nil {
		return value, true
	}
	if strings.HasPrefix(name, envNamespace) && e.lookupEnv != nil {
		if value, ok := e.lookupEnv(strings.TrimPrefix(name, envNamespace)); ok {
			return value, true
		}
	}
	return nil, false
}

func scalarText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case map[string]any, []any:
		return "", false
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return fmt.Sprint(val), true
	}
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return maps.Copy(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
