package api

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// UserContextFile returns the per-user context file,
// $XDG_CONFIG_HOME/shipyard/context.yaml or the first match in
// $XDG_CONFIG_DIRS, or "" when none exists.
func UserContextFile() string {
	p, err := xdg.SearchConfigFile(filepath.Join("shipyard", "context.yaml"))
	if err != nil {
		return ""
	}
	return p
}

// LoadContextFile reads a YAML file and returns it as a map.
func LoadContextFile(filename string) (map[string]any, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var ctx map[string]any
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}

	if ctx == nil {
		ctx = make(map[string]any)
	}

	return ctx, nil
}

// MergeContext performs a shallow merge of local context over global context.
// Local keys override global keys at the top level.
func MergeContext(global, local map[string]any) map[string]any {
	merged := make(map[string]any, len(global)+len(local))
	maps.Copy(merged, global)
	maps.Copy(merged, local)
	return merged
}

// ResolvedTag returns the configured tag, or "v<version>" when none is set.
func (p Project) ResolvedTag() string {
	if p.Tag != "" {
		return p.Tag
	}
	return "v" + p.Version
}

// TemplateData returns the values known at configuration time. The user
// context comes first so project keys cannot be shadowed.
func (c *Config) TemplateData() map[string]any {
	return MergeContext(c.Context, map[string]any{
		"ProjectName": c.Project.Name,
		"Version":     c.Project.Version,
		"Tag":         c.Project.ResolvedTag(),
		"Project":     c.Project,
	})
}
