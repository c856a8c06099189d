// Package service provides the configuration engine's entry point.
//
// ConfigHelper ties the pieces together:
//
//   - an overlay.Store holding the ordered contexts
//   - a schema.Composer merging schema fragments
//   - an Expander resolving ${...} placeholders
//   - the build pipeline: export, expand, validate, cache
//
// Collaborators (file loader, directory scanner, expander) are interfaces
// with defaults from internal/infra. ConfigHelper is not safe for
// concurrent use; hosts sharing one instance must serialise access.
package service
