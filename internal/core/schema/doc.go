// Package schema describes, composes and enforces configuration schemas.
//
// A schema is a tree of *Node values. Leaves are typed (scalar, boolean,
// integer, float); branches are array nodes owning ordered named children.
//
//   - node.go: the node model and fluent builders
//   - composer.go: merging independently authored fragments into one tree
//   - processor.go: validating and defaulting a configuration against a tree
//   - dumper.go: human-readable reference listing of a tree
//   - descriptor.go: YAML schema descriptor files
//
// Fragments are descriptors, not trees: every call to Fragment.Tree must
// return a fresh node graph. The Composer clones what it inserts and never
// writes back into a fragment, so building the same fragment list twice
// yields equal trees.
package schema
