// Package pipeline selects and supervises release backends: it resolves the
// single releaser, dispatches packagers and announcers with per-backend
// failure isolation, and reports every outcome to the caller.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

// Stage selects which part of the pipeline runs.
type Stage string

const (
	StageFull     Stage = "full"
	StageRelease  Stage = "release"
	StagePackage  Stage = "package"
	StageAnnounce Stage = "announce"
)

// ParseStage maps a command name to a Stage.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(s); st {
	case StageFull, StageRelease, StagePackage, StageAnnounce:
		return st, nil
	case "":
		return StageFull, nil
	default:
		return "", fmt.Errorf("unknown command %q (valid: full, release, package, announce)", s)
	}
}

func (s Stage) runs(other Stage) bool { return s == StageFull || s == other }

// Options tune a pipeline run.
type Options struct {
	Registry *backend.Registry
	Stage    Stage

	// Timeout bounds each backend call. Zero uses the config timeout.
	Timeout time.Duration

	PackageParallelism  int
	AnnounceParallelism int
}

// Report collects the outcomes of a run.
type Report struct {
	Release    *Outcome
	Packagers  OutcomeSet
	Announcers OutcomeSet
}

// All returns every outcome in pipeline order.
func (r *Report) All() OutcomeSet {
	var all OutcomeSet
	if r.Release != nil {
		all = append(all, *r.Release)
	}
	all = append(all, r.Packagers...)
	return append(all, r.Announcers...)
}

// Degraded reports whether any backend failed or timed out.
func (r *Report) Degraded() bool { return r.All().Degraded() }

// Failed lists every backend that did not succeed.
func (r *Report) Failed() []string { return r.All().Failed() }

// Err joins the errors of every backend that did not succeed.
func (r *Report) Err() error { return r.All().Err() }

// Summarize logs the final summary of the run.
func (r *Report) Summarize(rc *backend.Context) {
	all := r.All()
	failed := all.Failed()
	if len(failed) == 0 {
		rc.Logger.Info("release pipeline completed", "backends", len(all), "dryRun", rc.DryRun)
		return
	}
	rc.Logger.Error("release pipeline degraded", "backends", len(all), "failed", failed)
}

// ErrReleaseFailed marks a run aborted because the release itself failed.
var ErrReleaseFailed = errors.New("release failed")

// Run drives release, packaging and announcement for rc. Resolver errors and
// a failed release abort the run and are returned as the error; packager and
// announcer failures are only reported in the Report, after every enabled
// backend has been attempted.
func Run(ctx context.Context, rc *backend.Context, opts Options) (*Report, error) {
	if opts.Registry == nil {
		opts.Registry = backend.Default
	}
	if opts.Stage == "" {
		opts.Stage = StageFull
	}
	timeout := opts.Timeout
	if timeout == 0 && rc.Config != nil {
		timeout = rc.Config.TimeoutDuration()
	}

	cfg := rc.Config
	report := &Report{}

	if opts.Stage.runs(StageRelease) {
		b, desc, err := ResolveReleaser(opts.Registry, cfg.Releasers)
		if err != nil {
			return report, err
		}
		rc = linkRelease(rc, b, desc)

		start := time.Now()
		rc.Log(backend.Releaser, desc.Name).Info("publishing release", "tag", rc.Tag, "dryRun", rc.DryRun)
		err = invoke(ctx, timeout, b, desc, rc)
		o := Outcome{
			Category: backend.Releaser,
			Backend:  desc.Name,
			Status:   statusOf(err),
			Err:      err,
			Duration: time.Since(start),
		}
		logOutcome(rc, o)
		report.Release = &o
		if !o.OK() {
			return report, fmt.Errorf("%w: %w", ErrReleaseFailed, err)
		}
	} else {
		// package and announce on their own still link the release when the
		// releaser configuration allows it
		if b, desc, err := ResolveReleaser(opts.Registry, cfg.Releasers); err == nil {
			rc = linkRelease(rc, b, desc)
		} else {
			rc.Logger.Debug("release link unavailable", "error", err)
		}
	}

	if opts.Stage.runs(StagePackage) {
		d := NewPackagerDispatcher(opts.Registry, timeout)
		if opts.PackageParallelism != 0 {
			d.Parallelism = opts.PackageParallelism
		}
		report.Packagers = d.DispatchAll(ctx, cfg.Packagers, rc)
	}

	if opts.Stage.runs(StageAnnounce) {
		d := NewAnnouncerDispatcher(opts.Registry, timeout)
		if opts.AnnounceParallelism != 0 {
			d.Parallelism = opts.AnnounceParallelism
		}
		report.Announcers = d.DispatchAll(ctx, cfg.Announcers, rc)
	}

	report.Summarize(rc)
	return report, nil
}

func linkRelease(rc *backend.Context, b backend.Backend, desc api.Descriptor) *backend.Context {
	l, ok := b.(backend.Linker)
	if !ok {
		return rc
	}
	url := l.ReleaseURL(rc, desc)
	if url == "" {
		return rc
	}
	return rc.WithReleaseURL(url)
}
