package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

type urlCapture struct {
	fakeBackend
	seen *[]string
}

func (u *urlCapture) Execute(ctx context.Context, rc *backend.Context, d api.Descriptor) error {
	*u.seen = append(*u.seen, rc.ReleaseURL)
	return u.fakeBackend.Execute(ctx, rc, d)
}

func pipelineRegistry(rec *recorder, releaseErr error, seen *[]string) *backend.Registry {
	reg := backend.NewRegistry()
	reg.MustRegister(backend.Releaser, "github", func() backend.Backend {
		return linkingBackend{&fakeBackend{name: "github", rec: rec, executeErr: releaseErr, url: "https://github.com/o/r/releases/tag"}}
	})
	register(reg, backend.Releaser, fakeBackend{name: "gitlab", rec: rec})
	register(reg, backend.Packager, fakeBackend{name: "homebrew", rec: rec})
	register(reg, backend.Packager, fakeBackend{name: "snap", rec: rec, executeErr: errBoom})
	register(reg, backend.Announcer, fakeBackend{name: "twitter", rec: rec, executeErr: errBoom})
	reg.MustRegister(backend.Announcer, "discord", func() backend.Backend {
		return &urlCapture{fakeBackend: fakeBackend{name: "discord", rec: rec}, seen: seen}
	})
	return reg
}

func pipelineConfig() *api.Config {
	return &api.Config{
		Project:    api.Project{Name: "shipyard", Version: "1.2.0"},
		Releasers:  descriptors("github", true, "gitlab", false),
		Packagers:  descriptors("homebrew", true, "snap", true),
		Announcers: descriptors("twitter", true, "discord", true),
	}
}

func TestRun_Full(t *testing.T) {
	rec := &recorder{}
	var seen []string
	reg := pipelineRegistry(rec, nil, &seen)

	report, err := Run(context.Background(), newContext(false, pipelineConfig()), Options{Registry: reg, Timeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Release == nil || report.Release.Backend != "github" || !report.Release.OK() {
		t.Fatalf("release outcome = %+v", report.Release)
	}
	if len(report.Packagers) != 2 || len(report.Announcers) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !report.Degraded() {
		t.Error("expected degraded run")
	}
	if got := report.Failed(); !reflect.DeepEqual(got, []string{"snap", "twitter"}) {
		t.Errorf("Failed() = %v", got)
	}
	if !errors.Is(report.Err(), errBoom) {
		t.Errorf("Err() = %v", report.Err())
	}
	if !reflect.DeepEqual(seen, []string{"https://github.com/o/r/releases/tag/v1.2.0"}) {
		t.Errorf("announcers saw release URL %v", seen)
	}
	if n := rec.mutations.Load(); n != 3 {
		t.Errorf("expected 3 successful mutations, got %d", n)
	}
}

func TestRun_ResolverErrorAbortsBeforeDownstream(t *testing.T) {
	rec := &recorder{}
	var seen []string
	reg := pipelineRegistry(rec, nil, &seen)

	cfg := pipelineConfig()
	cfg.Releasers = descriptors("github", true, "gitlab", true)

	report, err := Run(context.Background(), newContext(false, cfg), Options{Registry: reg})
	if !errors.Is(err, backend.ErrAmbiguousReleaser) {
		t.Fatalf("want ErrAmbiguousReleaser, got %v", err)
	}
	if report.Release != nil || len(report.Packagers) != 0 || len(report.Announcers) != 0 {
		t.Errorf("nothing should run, got %+v", report)
	}
	if len(rec.calls()) != 0 {
		t.Errorf("executed %v", rec.calls())
	}
}

func TestRun_NoReleaser(t *testing.T) {
	rec := &recorder{}
	var seen []string
	reg := pipelineRegistry(rec, nil, &seen)

	cfg := pipelineConfig()
	cfg.Releasers = descriptors("github", false)

	_, err := Run(context.Background(), newContext(false, cfg), Options{Registry: reg})
	if !errors.Is(err, backend.ErrNoReleaserConfigured) {
		t.Fatalf("want ErrNoReleaserConfigured, got %v", err)
	}
}

func TestRun_ReleaseFailureAborts(t *testing.T) {
	rec := &recorder{}
	var seen []string
	reg := pipelineRegistry(rec, errBoom, &seen)

	report, err := Run(context.Background(), newContext(false, pipelineConfig()), Options{Registry: reg})
	if !errors.Is(err, ErrReleaseFailed) || !errors.Is(err, errBoom) {
		t.Fatalf("want ErrReleaseFailed wrapping cause, got %v", err)
	}
	if report.Release == nil || report.Release.Status != StatusFailure {
		t.Errorf("release outcome = %+v", report.Release)
	}
	if calls := rec.calls(); !reflect.DeepEqual(calls, []string{"github"}) {
		t.Errorf("downstream ran after failed release: %v", calls)
	}
}

func TestRun_AnnounceStageOnly(t *testing.T) {
	rec := &recorder{}
	var seen []string
	reg := pipelineRegistry(rec, nil, &seen)

	report, err := Run(context.Background(), newContext(true, pipelineConfig()), Options{Registry: reg, Stage: StageAnnounce})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Release != nil || report.Packagers != nil {
		t.Errorf("only announcers should run: %+v", report)
	}
	if len(report.Announcers) != 2 {
		t.Errorf("announcers = %+v", report.Announcers)
	}
	if len(seen) != 1 || seen[0] == "" {
		t.Errorf("announce stage should still link the release, saw %v", seen)
	}
	if rec.mutations.Load() != 0 {
		t.Error("dry run must not mutate")
	}
}

func TestRun_PackageStageWithoutReleaser(t *testing.T) {
	rec := &recorder{}
	var seen []string
	reg := pipelineRegistry(rec, nil, &seen)

	cfg := pipelineConfig()
	cfg.Releasers = nil

	report, err := Run(context.Background(), newContext(false, cfg), Options{Registry: reg, Stage: StagePackage})
	if err != nil {
		t.Fatalf("package stage must not require a releaser: %v", err)
	}
	if len(report.Packagers) != 2 || report.Announcers != nil {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestParseStage(t *testing.T) {
	for in, want := range map[string]Stage{
		"":         StageFull,
		"full":     StageFull,
		"release":  StageRelease,
		"package":  StagePackage,
		"announce": StageAnnounce,
	} {
		got, err := ParseStage(in)
		if err != nil || got != want {
			t.Errorf("ParseStage(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStage("publish"); err == nil {
		t.Error("expected error for unknown command")
	}
}
