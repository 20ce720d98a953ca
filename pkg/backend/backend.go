// Package backend defines the contract shared by every release integration
// (releasers, packagers, announcers), the immutable execution context handed
// to them, and the registry that maps configuration names to implementations.
package backend

import (
	"context"

	"github.com/systemstart/shipyard/pkg/api"
)

// Category groups backends that share a pipeline stage.
type Category string

const (
	Releaser  Category = api.CategoryReleaser
	Packager  Category = api.CategoryPackager
	Announcer Category = api.CategoryAnnouncer
)

// Backend is implemented by every concrete integration.
//
// Execute must honor rc.DryRun: all local computation (payload construction,
// template rendering) still runs, but network and filesystem mutation is
// skipped and nil is returned as if the action succeeded.
type Backend interface {
	// Name is the registry key and the name reported in outcomes.
	Name() string
	// Validate checks the descriptor payload without side effects. Failures
	// are *ConfigError values.
	Validate(d api.Descriptor) error
	// Execute performs the release, package or announcement action.
	Execute(ctx context.Context, rc *Context, d api.Descriptor) error
}

// Factory constructs a fresh, stateless Backend.
type Factory func() Backend

// Linker is implemented by releasers that can compute the public URL of the
// release before it is created.
type Linker interface {
	ReleaseURL(rc *Context, d api.Descriptor) string
}
