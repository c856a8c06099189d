// Package buildinfo reports the version of the confhelper binary.
//
// Release builds inject the version fields via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/confhelper-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Fields left at their defaults are filled from the module build
// information embedded by the Go toolchain (VCS revision, commit time and
// compiler version).
package buildinfo
