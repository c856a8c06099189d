// Package domain defines the error taxonomy shared by the configuration engine.
//
// Every failure surfaced by the engine is a *DomainError carrying a stable
// code. The four families are:
//
//   - Schema: composing schema fragments failed
//   - Validation: the merged configuration does not match the composed schema
//   - Runtime: the engine was misused (unsupported operation, unknown dump mode)
//   - Load: a collaborator could not read or parse a configuration source
//
// Callers match families with errors.Is against the exported sentinels.
package domain
