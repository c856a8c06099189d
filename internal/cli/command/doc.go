// Package command defines the confhelper CLI using urfave/cli/v2.
//
//   - root.go: application, global flags, settings and logger setup
//   - helper.go: builds a ConfigHelper from the global flags
//   - dump.go, get.go, schema.go, validate.go, contexts.go: one-shot reads
//   - watch.go: reloads files on change until interrupted, optionally
//     serving status over HTTP
//   - config.go: the CLI's own settings
//   - version.go: build information
//
// Commands follow a consistent pattern: parse flags, build a ConfigHelper,
// call it, and write the result through an output.Formatter.
package command
