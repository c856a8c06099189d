package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/confhelper-go/internal/core/domain"
)

// A descriptor file declares one fragment:
//
//	path: branch/subbranch
//	children:
//	  enabled:
//	    type: boolean
//	    default: false
//	    info: Turns the feature on.
//	  limits:
//	    type: array
//	    defaults_if_not_set: true
//	    children:
//	      max:
//	        type: integer
//	        default: 10
//	        min: 0
//
// Children keep their file order. A child without a type is an array when
// it declares children and a scalar otherwise; a bare type name ("port:
// integer") is shorthand for a node with only that type.

type descriptorFile struct {
	Path     string    `yaml:"path"`
	Children yaml.Node `yaml:"children"`
}

type descriptorNode struct {
	Type             string    `yaml:"type"`
	Info             string    `yaml:"info"`
	Required         bool      `yaml:"required"`
	Default          yaml.Node `yaml:"default"`
	Min              *float64  `yaml:"min"`
	Max              *float64  `yaml:"max"`
	Allowed          []any     `yaml:"allowed"`
	Example          any       `yaml:"example"`
	DefaultsIfNotSet bool      `yaml:"defaults_if_not_set"`
	Children         yaml.Node `yaml:"children"`
}

// descriptorFragment re-decodes its source on every Tree call so callers
// always receive a fresh graph.
type descriptorFragment struct {
	source string
	data   []byte
}

// DecodeFragment parses a YAML schema descriptor. The document is decoded
// once up front so errors surface here rather than at composition time.
func DecodeFragment(data []byte) (Fragment, error) {
	if _, err := decodeDescriptor(data); err != nil {
		return nil, err
	}
	return &descriptorFragment{data: append([]byte(nil), data...)}, nil
}

// LoadFragmentFile reads and parses a YAML schema descriptor file.
func LoadFragmentFile(path string) (Fragment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrLoad.WithDetailsf("read schema %s", path).WithCause(err)
	}
	f, err := DecodeFragment(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	f.(*descriptorFragment).source = path
	return f, nil
}

// Tree implements Fragment.
func (f *descriptorFragment) Tree() *Node {
	n, err := decodeDescriptor(f.data)
	if err != nil {
		return nil
	}
	return n
}

// String names the fragment for log output.
func (f *descriptorFragment) String() string {
	if f.source != "" {
		return f.source
	}
	return "inline descriptor"
}

func decodeDescriptor(data []byte) (*Node, error) {
	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domain.ErrSchema.WithDetails("malformed schema descriptor").WithCause(err)
	}
	if file.Children.Kind == 0 {
		// An empty document is an empty fragment.
		if file.Path == "" {
			return nil, nil
		}
		return Array(file.Path), nil
	}
	children, err := decodeChildren(&file.Children, file.Path)
	if err != nil {
		return nil, err
	}
	return Array(file.Path, children...), nil
}

func decodeChildren(node *yaml.Node, path string) ([]*Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, domain.ErrSchema.WithDetailsf("children of %q must be a mapping", path)
	}

	children := make([]*Node, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		child, err := decodeNode(name, node.Content[i+1], path+"/"+name)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func decodeNode(name string, node *yaml.Node, path string) (*Node, error) {
	var d descriptorNode
	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
	case node.Kind == yaml.ScalarNode:
		// "name: boolean" is shorthand for "name: {type: boolean}".
		d.Type = node.Value
	default:
		if err := node.Decode(&d); err != nil {
			return nil, domain.ErrSchema.WithDetailsf("malformed node %q", path).WithCause(err)
		}
	}

	typ := d.Type
	if typ == "" {
		typ = "scalar"
		if d.Children.Kind != 0 {
			typ = "array"
		}
	}
	kind, err := ParseKind(typ)
	if err != nil {
		return nil, domain.ErrSchema.WithDetailsf("node %q: %v", path, err)
	}

	n := &Node{
		Kind:          kind,
		Name:          name,
		Description:   d.Info,
		IsRequired:    d.Required,
		MinValue:      d.Min,
		MaxValue:      d.Max,
		AllowedValues: d.Allowed,
		ExampleValue:  d.Example,
		AddDefaults:   d.DefaultsIfNotSet,
	}

	if d.Default.Kind != 0 {
		var v any
		if err := d.Default.Decode(&v); err != nil {
			return nil, domain.ErrSchema.WithDetailsf("node %q: bad default", path).WithCause(err)
		}
		n.Default(v)
	}

	if d.Children.Kind != 0 {
		if kind != KindArray {
			return nil, domain.ErrSchema.WithDetailsf("node %q: %s nodes cannot have children", path, kind)
		}
		children, err := decodeChildren(&d.Children, path)
		if err != nil {
			return nil, err
		}
		n.Children = children
	}
	return n, nil
}
