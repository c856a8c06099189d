package schema

import "fmt"

// Kind tags the variant of a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindArray
)

// String returns the label used in error messages and reference dumps.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a descriptor type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "scalar", "string":
		return KindScalar, nil
	case "boolean", "bool":
		return KindBoolean, nil
	case "integer", "int":
		return KindInteger, nil
	case "float", "number":
		return KindFloat, nil
	case "array", "map", "branch":
		return KindArray, nil
	default:
		return 0, fmt.Errorf("unknown node type %q", s)
	}
}

// Node is one element of a schema tree.
//
// Only array nodes have Children; only numeric leaves use MinValue and
// MaxValue. The Name of a fragment's root node is the "/"-delimited path at
// which its children are inserted; an empty name means the composed root.
type Node struct {
	Kind        Kind
	Name        string
	Description string

	DefaultValue any
	HasDefault   bool
	IsRequired   bool

	MinValue *float64
	MaxValue *float64

	AllowedValues []any
	ExampleValue  any

	// AddDefaults materialises the node with its children's defaults when
	// the configuration omits it entirely.
	AddDefaults bool
	Children    []*Node
}

// Scalar returns a leaf accepting any scalar value.
func Scalar(name string) *Node { return &Node{Kind: KindScalar, Name: name} }

// Boolean returns a leaf accepting true or false.
func Boolean(name string) *Node { return &Node{Kind: KindBoolean, Name: name} }

// Integer returns a leaf accepting whole numbers.
func Integer(name string) *Node { return &Node{Kind: KindInteger, Name: name} }

// Float returns a leaf accepting any number.
func Float(name string) *Node { return &Node{Kind: KindFloat, Name: name} }

// Array returns a branch node owning the given children in order.
func Array(name string, children ...*Node) *Node {
	return &Node{Kind: KindArray, Name: name, Children: children}
}

// Default sets the value injected when the key is absent.
func (n *Node) Default(v any) *Node {
	n.DefaultValue = v
	n.HasDefault = true
	return n
}

// Required makes the key mandatory.
func (n *Node) Required() *Node {
	n.IsRequired = true
	return n
}

// Info sets the description shown in reference dumps.
func (n *Node) Info(s string) *Node {
	n.Description = s
	return n
}

// Min sets the inclusive lower bound of a numeric leaf.
func (n *Node) Min(v float64) *Node {
	n.MinValue = &v
	return n
}

// Max sets the inclusive upper bound of a numeric leaf.
func (n *Node) Max(v float64) *Node {
	n.MaxValue = &v
	return n
}

// Allow restricts a leaf to an enumeration of values.
func (n *Node) Allow(values ...any) *Node {
	n.AllowedValues = append(n.AllowedValues, values...)
	return n
}

// Example sets an example value shown in reference dumps.
func (n *Node) Example(v any) *Node {
	n.ExampleValue = v
	return n
}

// DefaultsIfNotSet makes an omitted array node default to its children's
// defaults instead of being left out.
func (n *Node) DefaultsIfNotSet() *Node {
	n.AddDefaults = true
	return n
}

// Append adds children to an array node.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// IsBranch reports whether the node can own children.
func (n *Node) IsBranch() bool {
	return n.Kind == KindArray
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Lookup walks dotted path segments below n.
func (n *Node) Lookup(path ...string) *Node {
	cur := n
	for _, seg := range path {
		if cur == nil || !cur.IsBranch() {
			return nil
		}
		cur = cur.Child(seg)
	}
	return cur
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.DefaultValue = copyValue(n.DefaultValue)
	c.ExampleValue = copyValue(n.ExampleValue)
	if n.MinValue != nil {
		v := *n.MinValue
		c.MinValue = &v
	}
	if n.MaxValue != nil {
		v := *n.MaxValue
		c.MaxValue = &v
	}
	if n.AllowedValues != nil {
		c.AllowedValues = make([]any, len(n.AllowedValues))
		for i, v := range n.AllowedValues {
			c.AllowedValues[i] = copyValue(v)
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// copyValue deep-copies the map and slice shapes produced by YAML and JSON
// decoding. Other values are returned as is.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = copyValue(item)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = copyValue(item)
		}
		return s
	default:
		return v
	}
}
