// Package output renders CLI results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned tables; configuration trees flatten to dotted KEY/VALUE rows
//   - json.go: indented JSON
//   - yaml.go: YAML with two-space indentation
package output
