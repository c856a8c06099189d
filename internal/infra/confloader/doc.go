// Package confloader turns configuration sources into koanf layers.
//
// Sources:
//
//   - ArrayLoader: in-memory maps, optionally expanding dotted keys
//   - FileLoader: YAML (.yaml, .yml) and JSON with comments (.json, .jsonc)
//   - EnvLoader: prefixed environment variables (PREFIX_A_B -> a.b)
//
// DirScanner discovers configuration files below a set of roots and
// Watcher reports changes to files that were loaded.
package confloader
