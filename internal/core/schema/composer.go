package schema

import (
	"strings"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// RootName is the name of the composed tree's root node.
const RootName = "schema"

// Fragment is one independently authored schema contribution.
//
// Tree must return a fresh node graph on every call, or nil for an empty
// fragment. The root's Name is the "/"-delimited insertion path.
type Fragment interface {
	Tree() *Node
}

// FragmentFunc adapts a builder function to the Fragment interface.
type FragmentFunc func() *Node

// Tree calls f.
func (f FragmentFunc) Tree() *Node { return f() }

// Composer merges schema fragments, in registration order, into one tree.
//
// A fragment with an empty root name ("root fragment") is only accepted as
// the first fragment registered.
type Composer struct {
	fragments []Fragment
	logger    logger.Logger
}

// NewComposer creates an empty composer. A nil logger discards debug output.
func NewComposer(log logger.Logger) *Composer {
	if log == nil {
		log = logger.Nop()
	}
	return &Composer{logger: log}
}

// Add registers a fragment. Fragments producing a nil tree are ignored.
func (c *Composer) Add(f Fragment) error {
	if f == nil {
		return nil
	}
	tree := f.Tree()
	if tree == nil {
		c.logger.Debug("ignoring empty schema fragment")
		return nil
	}
	if !tree.IsBranch() {
		return domain.ErrSchema.WithDetailsf("fragment root %q must be an array node, got %s", tree.Name, tree.Kind)
	}
	if tree.Name == "" && len(c.fragments) > 0 {
		return domain.ErrSchema.WithDetails("root schema (fragment without a path) must be registered first")
	}
	c.fragments = append(c.fragments, f)
	c.logger.Debug("schema fragment registered", "path", tree.Name, "position", len(c.fragments))
	return nil
}

// Empty reports whether no fragment has been registered.
func (c *Composer) Empty() bool {
	return len(c.fragments) == 0
}

// Len returns the number of registered fragments.
func (c *Composer) Len() int {
	return len(c.fragments)
}

// BuildTree composes all registered fragments into a single tree rooted at
// RootName. It returns nil when nothing was registered.
func (c *Composer) BuildTree() (*Node, error) {
	if c.Empty() {
		return nil, nil
	}

	root := Array(RootName)
	for _, f := range c.fragments {
		tree := f.Tree()
		if tree == nil {
			continue
		}
		c.logger.Debug("inserting schema fragment", "path", tree.Name)

		at, atPath, err := c.resolve(root, tree.Name)
		if err != nil {
			return nil, err
		}
		if err := c.insert(tree, at, atPath); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// resolve walks path segments from root, creating missing branches.
func (c *Composer) resolve(root *Node, path string) (*Node, string, error) {
	at, atPath := root, RootName
	if path == "" {
		return at, atPath, nil
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		childPath := atPath + "." + seg
		child := at.Child(seg)
		switch {
		case child == nil:
			c.logger.Debug("creating branch", "path", childPath)
			child = Array(seg).DefaultsIfNotSet()
			at.Children = append(at.Children, child)
		case !child.IsBranch():
			return nil, "", mismatch(childPath, child.Kind, childPath, KindArray)
		}
		at, atPath = child, childPath
	}
	return at, atPath, nil
}

// insert merges the children of src into the branch at.
func (c *Composer) insert(src, at *Node, atPath string) error {
	for _, def := range src.Children {
		path := atPath + "." + def.Name
		existing := at.Child(def.Name)

		if existing == nil {
			c.logger.Debug("inserting node", "path", path, "kind", def.Kind.String())
			at.Children = append(at.Children, def.Clone())
			continue
		}

		if existing.Kind != def.Kind {
			return mismatch(path, existing.Kind, path, def.Kind)
		}
		if existing.IsBranch() {
			c.logger.Debug("merging into existing branch", "path", path)
			if err := c.insert(def, existing, path); err != nil {
				return err
			}
			continue
		}
		c.logger.Debug("leaf already defined, keeping first", "path", path)
	}
	return nil
}

func mismatch(targetPath string, targetKind Kind, sourcePath string, sourceKind Kind) error {
	return domain.ErrSchema.WithDetailsf("type mismatch, can't replace %s [%s] with %s [%s]",
		targetPath, targetKind, sourcePath, sourceKind)
}
