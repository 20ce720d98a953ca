package api

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the configuration for structural errors. Enablement and
// releaser exclusivity are checked by the pipeline, not here.
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return fmt.Errorf("project.name is required")
	}
	if c.Project.Version == "" {
		return fmt.Errorf("project.version is required")
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("timeout %q: %w", c.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout %q must be positive", c.Timeout)
		}
	}

	for _, cat := range c.Categories() {
		if err := validateDescriptors(cat.Category, cat.Descriptors); err != nil {
			return err
		}
	}

	return nil
}

func validateDescriptors(category string, descriptors []Descriptor) error {
	names := make(map[string]int)
	for i, d := range descriptors {
		if d.Name == "" {
			return fmt.Errorf("%s %d: name is required", category, i)
		}
		// backend lookup ignores case, so "Discord" and "discord" collide
		key := strings.ToLower(d.Name)
		if prev, exists := names[key]; exists {
			return fmt.Errorf("%s %d: duplicate name %q (first defined at %s %d)", category, i, d.Name, category, prev)
		}
		names[key] = i
	}
	return nil
}

// TimeoutDuration returns the configured per-backend timeout, falling back to
// DefaultTimeout.
func (c *Config) TimeoutDuration() time.Duration {
	timeout := c.Timeout
	if timeout == "" {
		timeout = DefaultTimeout
	}
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}
