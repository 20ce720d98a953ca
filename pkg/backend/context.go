package backend

import (
	"log/slog"
	"maps"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/artifacts"
	"github.com/systemstart/shipyard/pkg/logging"
)

// Context is the read-only snapshot shared by every backend invocation of a
// run. It is safe for concurrent use as long as nobody writes to it; backends
// keep scratch state locally.
type Context struct {
	RunID       string
	ProjectName string
	Version     string
	Tag         string
	Prerelease  bool
	DryRun      bool
	OutputDir   string
	ReleaseURL  string

	Logger    *slog.Logger
	Config    *api.Config
	Artifacts []artifacts.Artifact
}

// Options carries the run-level inputs that do not come from the config file.
type Options struct {
	DryRun    bool
	OutputDir string
	Logger    *slog.Logger
	Artifacts []artifacts.Artifact
}

// NewContext builds the execution context for one run. cfg should already be
// interpolated. Versions that are not semver are accepted as-is and never
// flagged as prereleases.
func NewContext(cfg *api.Config, opts Options) *Context {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	rc := &Context{
		RunID:       uuid.NewString(),
		ProjectName: cfg.Project.Name,
		Version:     cfg.Project.Version,
		Tag:         cfg.Project.ResolvedTag(),
		DryRun:      opts.DryRun || cfg.DryRun,
		OutputDir:   opts.OutputDir,
		Config:      cfg,
		Artifacts:   opts.Artifacts,
	}

	if v, err := semver.NewVersion(cfg.Project.Version); err == nil {
		rc.Prerelease = v.Prerelease() != ""
	} else {
		logger.Debug("version is not semver", "version", cfg.Project.Version, "error", err)
	}

	rc.Logger = logger.With("run", rc.RunID)
	return rc
}

// WithReleaseURL returns a copy of rc carrying url. rc is left untouched.
func (rc *Context) WithReleaseURL(url string) *Context {
	cp := *rc
	cp.ReleaseURL = url
	return &cp
}

// Log returns the run logger scoped to one backend.
func (rc *Context) Log(category Category, name string) *slog.Logger {
	return rc.Logger.With("category", string(category), "backend", name)
}

// TemplateData returns a fresh map for rendering messages and package
// definitions.
func (rc *Context) TemplateData() map[string]any {
	var data map[string]any
	if rc.Config != nil {
		data = rc.Config.TemplateData()
	} else {
		data = make(map[string]any)
	}
	maps.Copy(data, map[string]any{
		"ProjectName": rc.ProjectName,
		"Version":     rc.Version,
		"Tag":         rc.Tag,
		"Prerelease":  rc.Prerelease,
		"DryRun":      rc.DryRun,
		"ReleaseURL":  rc.ReleaseURL,
		"Artifacts":   rc.Artifacts,
	})
	return data
}
