package api

const (
	DefaultConfigFile = "shipyard.yaml"
	DefaultTimeout    = "60s"
	DefaultInclude    = "**/*"

	CategoryReleaser  = "releaser"
	CategoryPackager  = "packager"
	CategoryAnnouncer = "announcer"
)

// Config is the shipyard.yaml configuration format.
type Config struct {
	Project    Project        `yaml:"project" toml:"project"`
	Artifacts  ArtifactConfig `yaml:"artifacts" toml:"artifacts"`
	Context    map[string]any `yaml:"context" toml:"context"`
	Timeout    string         `yaml:"timeout" toml:"timeout"`
	DryRun     bool           `yaml:"dryRun" toml:"dryRun"`
	Releasers  []Descriptor   `yaml:"releasers" toml:"releasers"`
	Packagers  []Descriptor   `yaml:"packagers" toml:"packagers"`
	Announcers []Descriptor   `yaml:"announcers" toml:"announcers"`

	// Set by the loader, not from YAML.
	Dir      string `yaml:"-" toml:"-"`
	FilePath string `yaml:"-" toml:"-"`
}

// Project holds the release metadata shared by every backend.
type Project struct {
	Name        string   `yaml:"name" toml:"name"`
	Version     string   `yaml:"version" toml:"version"`
	Tag         string   `yaml:"tag" toml:"tag"`
	Description string   `yaml:"description" toml:"description"`
	Homepage    string   `yaml:"homepage" toml:"homepage"`
	License     string   `yaml:"license" toml:"license"`
	Authors     []string `yaml:"authors" toml:"authors"`
}

// ArtifactConfig selects the built files that belong to the release.
type ArtifactConfig struct {
	Dir     string   `yaml:"dir" toml:"dir"`
	Include []string `yaml:"include" toml:"include"`
	Exclude []string `yaml:"exclude" toml:"exclude"`
}

// Descriptor identifies and parameterizes one backend instance.
type Descriptor struct {
	Name    string         `yaml:"name" toml:"name"`
	Enabled bool           `yaml:"enabled" toml:"enabled"`
	Config  map[string]any `yaml:"config" toml:"config"`
}

// Categories returns the descriptor lists keyed by category, in pipeline order.
func (c *Config) Categories() []CategoryDescriptors {
	return []CategoryDescriptors{
		{Category: CategoryReleaser, Descriptors: c.Releasers},
		{Category: CategoryPackager, Descriptors: c.Packagers},
		{Category: CategoryAnnouncer, Descriptors: c.Announcers},
	}
}

// CategoryDescriptors pairs a category with its configured descriptors.
type CategoryDescriptors struct {
	Category    string
	Descriptors []Descriptor
}
