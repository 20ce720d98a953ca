// Package backends wires the bundled releasers, packagers and announcers into
// a registry.
package backends

import (
	"github.com/systemstart/shipyard/pkg/backend"
	"github.com/systemstart/shipyard/pkg/backends/announcers"
	"github.com/systemstart/shipyard/pkg/backends/packagers"
	"github.com/systemstart/shipyard/pkg/backends/releasers"
)

// RegisterBuiltins adds every bundled backend to reg. It panics if reg is
// sealed or already holds one of them.
func RegisterBuiltins(reg *backend.Registry) {
	releasers.Register(reg)
	packagers.Register(reg)
	announcers.Register(reg)
}
