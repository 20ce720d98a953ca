package pipeline

import (
	"fmt"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

// Enabled returns the enabled descriptors, preserving order.
func Enabled(descriptors []api.Descriptor) []api.Descriptor {
	var out []api.Descriptor
	for _, d := range descriptors {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// ResolveReleaser selects the single enabled releaser, constructs it from reg
// and validates it. Zero enabled releasers fail with ErrNoReleaserConfigured,
// more than one with ErrAmbiguousReleaser naming all of them. There is no
// priority order between releasers.
func ResolveReleaser(reg *backend.Registry, descriptors []api.Descriptor) (backend.Backend, api.Descriptor, error) {
	enabled := Enabled(descriptors)

	switch len(enabled) {
	case 0:
		return nil, api.Descriptor{}, &backend.ResolutionError{Kind: backend.ErrNoReleaserConfigured}
	case 1:
	default:
		names := make([]string, len(enabled))
		for i, d := range enabled {
			names[i] = d.Name
		}
		return nil, api.Descriptor{}, &backend.ResolutionError{Kind: backend.ErrAmbiguousReleaser, Names: names}
	}

	desc := enabled[0]
	b, err := reg.New(backend.Releaser, desc.Name)
	if err != nil {
		return nil, api.Descriptor{}, fmt.Errorf("resolving releaser: %w", err)
	}
	if err := b.Validate(desc); err != nil {
		return nil, api.Descriptor{}, fmt.Errorf("resolving releaser: %w", err)
	}
	return b, desc, nil
}
