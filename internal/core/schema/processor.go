package schema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// InvalidError reports the first place where a configuration does not
// match a schema tree.
type InvalidError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidError) Error() string {
	return e.Reason
}

func invalidf(path, format string, args ...any) *InvalidError {
	return &InvalidError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Process validates data against root and returns the normalised
// configuration: unknown keys are rejected, required keys enforced, numbers
// normalised and defaults injected. data is never modified.
func Process(root *Node, data map[string]any) (map[string]any, error) {
	if root == nil {
		if data == nil {
			return map[string]any{}, nil
		}
		return copyValue(data).(map[string]any), nil
	}
	var in any
	if data != nil {
		in = data
	}
	out, err := processNode(root, in, root.Name)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func processNode(n *Node, v any, path string) (any, error) {
	if n.IsBranch() {
		return processArray(n, v, path)
	}
	return processLeaf(n, v, path)
}

func processArray(n *Node, v any, path string) (any, error) {
	var in map[string]any
	switch val := v.(type) {
	case nil:
		in = map[string]any{}
	case map[string]any:
		in = val
	default:
		return nil, invalidf(path, "invalid type for path %q: expected array, got %s", path, typeName(v))
	}

	var unknown []string
	for key := range in {
		if n.Child(key) == nil {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, invalidf(path, "unrecognized option %q under %q; available options are %s",
			unknown[0], path, quoteNames(n.Children))
	}

	out := make(map[string]any, len(n.Children))
	for _, child := range n.Children {
		childPath := path + "." + child.Name
		value, present := in[child.Name]
		if present {
			processed, err := processNode(child, value, childPath)
			if err != nil {
				return nil, err
			}
			out[child.Name] = processed
			continue
		}

		switch {
		case child.IsRequired:
			return nil, invalidf(childPath, "the child config %q under %q must be configured", child.Name, path)
		case child.IsBranch() && child.AddDefaults:
			processed, err := processArray(child, nil, childPath)
			if err != nil {
				return nil, err
			}
			out[child.Name] = processed
		case child.HasDefault:
			out[child.Name] = copyValue(child.DefaultValue)
		}
	}
	return out, nil
}

func processLeaf(n *Node, v any, path string) (any, error) {
	if v == nil {
		if n.HasDefault {
			return copyValue(n.DefaultValue), nil
		}
		return nil, nil
	}

	var (
		out any
		err error
	)
	switch n.Kind {
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return nil, typeError(path, n.Kind, v)
		}
		out = v
	case KindInteger:
		out, err = toInt(v)
		if err != nil {
			return nil, typeError(path, n.Kind, v)
		}
	case KindFloat:
		out, err = toFloat(v)
		if err != nil {
			return nil, typeError(path, n.Kind, v)
		}
	default:
		switch v.(type) {
		case map[string]any, []any:
			return nil, typeError(path, n.Kind, v)
		}
		out = v
	}

	if err := checkRange(n, out, path); err != nil {
		return nil, err
	}
	if err := checkAllowed(n, out, path); err != nil {
		return nil, err
	}
	return out, nil
}

func typeError(path string, want Kind, got any) error {
	return invalidf(path, "invalid type for path %q: expected %s, got %s", path, want, typeName(got))
}

func checkRange(n *Node, v any, path string) error {
	if n.MinValue == nil && n.MaxValue == nil {
		return nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil
	}
	if n.MinValue != nil && f < *n.MinValue {
		return invalidf(path, "the value %v is too small for path %q; should be greater than or equal to %v",
			v, path, *n.MinValue)
	}
	if n.MaxValue != nil && f > *n.MaxValue {
		return invalidf(path, "the value %v is too big for path %q; should be less than or equal to %v",
			v, path, *n.MaxValue)
	}
	return nil
}

func checkAllowed(n *Node, v any, path string) error {
	if len(n.AllowedValues) == 0 {
		return nil
	}
	for _, allowed := range n.AllowedValues {
		if reflect.DeepEqual(v, allowed) {
			return nil
		}
	}
	return invalidf(path, "the value %s is not allowed for path %q; permissible values: %s",
		quote(v), path, quoteValues(n.AllowedValues))
}

func toInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int8:
		return int(val), nil
	case int16:
		return int(val), nil
	case int32:
		return int(val), nil
	case int64:
		return int(val), nil
	case uint:
		return int(val), nil
	case uint8:
		return int(val), nil
	case uint16:
		return int(val), nil
	case uint32:
		return int(val), nil
	case uint64:
		return int(val), nil
	case float32:
		if float64(val) == math.Trunc(float64(val)) {
			return int(val), nil
		}
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return int(val), nil
		}
	}
	return 0, fmt.Errorf("not an integer: %T", v)
}

func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	}
	i, err := toInt(v)
	if err != nil {
		return 0, err
	}
	return float64(i), nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "float"
	case map[string]any:
		return "array"
	case []any:
		return "list"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

func quoteValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = quote(v)
	}
	return strings.Join(parts, ", ")
}

func quoteNames(nodes []*Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = fmt.Sprintf("%q", n.Name)
	}
	return strings.Join(parts, ", ")
}
