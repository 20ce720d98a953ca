package api

import (
	"fmt"
	"strings"

	"github.com/systemstart/shipyard/pkg/render"
)

// DeferredSuffix marks payload keys rendered by the backend at execution time,
// when release-time values such as the release URL are known.
const DeferredSuffix = "Template"

// Interpolate returns a copy of c in which every string in descriptor payloads
// has been rendered against TemplateData. Keys ending in DeferredSuffix are
// copied verbatim. c itself is not modified.
func (c *Config) Interpolate() (*Config, error) {
	data := c.TemplateData()
	out := *c

	var err error
	if out.Releasers, err = interpolateAll(CategoryReleaser, c.Releasers, data); err != nil {
		return nil, err
	}
	if out.Packagers, err = interpolateAll(CategoryPackager, c.Packagers, data); err != nil {
		return nil, err
	}
	if out.Announcers, err = interpolateAll(CategoryAnnouncer, c.Announcers, data); err != nil {
		return nil, err
	}
	return &out, nil
}

func interpolateAll(category string, descriptors []Descriptor, data map[string]any) ([]Descriptor, error) {
	if descriptors == nil {
		return nil, nil
	}
	out := make([]Descriptor, len(descriptors))
	for i, d := range descriptors {
		out[i] = Descriptor{Name: d.Name, Enabled: d.Enabled}
		if d.Config == nil {
			continue
		}
		out[i].Config = make(map[string]any, len(d.Config))
		for k, v := range d.Config {
			if strings.HasSuffix(k, DeferredSuffix) {
				out[i].Config[k] = v
				continue
			}
			rendered, err := interpolateValue(d.Name+"."+k, v, data)
			if err != nil {
				return nil, fmt.Errorf("%s %q: config %q: %w", category, d.Name, k, err)
			}
			out[i].Config[k] = rendered
		}
	}
	return out, nil
}

func interpolateValue(name string, v any, data map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		if !render.IsTemplate(val) {
			return val, nil
		}
		return render.String(name, val, data)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			r, err := interpolateValue(name, item, data)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			r, err := interpolateValue(name+"."+k, item, data)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		return v, nil
	}
}
