package backend

import (
	"testing"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/artifacts"
)

func TestNewContext(t *testing.T) {
	cfg := &api.Config{
		Project: api.Project{Name: "shipyard", Version: "1.3.0-rc.1"},
		Context: map[string]any{"channel": "beta"},
	}

	rc := NewContext(cfg, Options{
		DryRun:    true,
		OutputDir: "out",
		Artifacts: []artifacts.Artifact{{Name: "a.zip"}},
	})

	if rc.ProjectName != "shipyard" || rc.Version != "1.3.0-rc.1" {
		t.Errorf("unexpected project fields: %+v", rc)
	}
	if rc.Tag != "v1.3.0-rc.1" {
		t.Errorf("Tag = %q", rc.Tag)
	}
	if !rc.Prerelease {
		t.Error("expected prerelease for -rc.1")
	}
	if !rc.DryRun {
		t.Error("expected dry run")
	}
	if rc.RunID == "" {
		t.Error("expected run id")
	}
	if rc.Logger == nil {
		t.Error("expected a logger even when none is given")
	}
}

func TestNewContext_ConfigDryRunAndNonSemver(t *testing.T) {
	cfg := &api.Config{
		Project: api.Project{Name: "shipyard", Version: "nightly", Tag: "nightly"},
		DryRun:  true,
	}
	rc := NewContext(cfg, Options{})
	if !rc.DryRun {
		t.Error("config dryRun should enable dry run")
	}
	if rc.Prerelease {
		t.Error("non-semver versions are never prereleases")
	}
	if rc.Tag != "nightly" {
		t.Errorf("Tag = %q", rc.Tag)
	}
}

func TestWithReleaseURL_DoesNotMutate(t *testing.T) {
	rc := NewContext(&api.Config{Project: api.Project{Name: "p", Version: "1.0.0"}}, Options{})
	derived := rc.WithReleaseURL("https://example.com/r/1")

	if rc.ReleaseURL != "" {
		t.Errorf("original mutated: %q", rc.ReleaseURL)
	}
	if derived.ReleaseURL != "https://example.com/r/1" {
		t.Errorf("derived = %q", derived.ReleaseURL)
	}
	if derived.RunID != rc.RunID {
		t.Error("derived context should keep the run id")
	}
}

func TestTemplateData(t *testing.T) {
	cfg := &api.Config{
		Project: api.Project{Name: "shipyard", Version: "2.0.0"},
		Context: map[string]any{"channel": "stable"},
	}
	rc := NewContext(cfg, Options{}).WithReleaseURL("https://r")

	data := rc.TemplateData()
	if data["ProjectName"] != "shipyard" || data["ReleaseURL"] != "https://r" || data["channel"] != "stable" {
		t.Errorf("unexpected data: %v", data)
	}

	data["ProjectName"] = "changed"
	if rc.TemplateData()["ProjectName"] != "shipyard" {
		t.Error("TemplateData must return a fresh map")
	}
}
