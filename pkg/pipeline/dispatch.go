package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

// Dispatcher runs every enabled backend of one category and isolates their
// failures: each attempt yields exactly one Outcome and never stops siblings.
type Dispatcher struct {
	Category backend.Category
	Registry *backend.Registry

	// Timeout bounds each Execute call. Zero disables the bound.
	Timeout time.Duration

	// Parallelism caps concurrent backends. 1 runs them sequentially in
	// configuration order, zero or less runs all of them at once.
	Parallelism int
}

// NewPackagerDispatcher returns a sequential packager dispatcher.
func NewPackagerDispatcher(reg *backend.Registry, timeout time.Duration) *Dispatcher {
	return &Dispatcher{Category: backend.Packager, Registry: reg, Timeout: timeout, Parallelism: 1}
}

// NewAnnouncerDispatcher returns an announcer dispatcher with unbounded fan-out.
func NewAnnouncerDispatcher(reg *backend.Registry, timeout time.Duration) *Dispatcher {
	return &Dispatcher{Category: backend.Announcer, Registry: reg, Timeout: timeout}
}

// DispatchPackagers runs the enabled packagers of rc's configuration one at a
// time with the configured timeout.
func DispatchPackagers(ctx context.Context, reg *backend.Registry, rc *backend.Context) OutcomeSet {
	return NewPackagerDispatcher(reg, rc.Config.TimeoutDuration()).DispatchAll(ctx, rc.Config.Packagers, rc)
}

// DispatchAnnouncers runs the enabled announcers of rc's configuration
// concurrently with the configured timeout.
func DispatchAnnouncers(ctx context.Context, reg *backend.Registry, rc *backend.Context) OutcomeSet {
	return NewAnnouncerDispatcher(reg, rc.Config.TimeoutDuration()).DispatchAll(ctx, rc.Config.Announcers, rc)
}

// DispatchAll attempts every enabled descriptor and returns their outcomes in
// configuration order. Disabled descriptors are neither attempted nor reported.
func (d *Dispatcher) DispatchAll(ctx context.Context, descriptors []api.Descriptor, rc *backend.Context) OutcomeSet {
	enabled := Enabled(descriptors)
	outcomes := make(OutcomeSet, len(enabled))
	if len(enabled) == 0 {
		return outcomes
	}

	var g errgroup.Group
	if d.Parallelism > 0 {
		g.SetLimit(d.Parallelism)
	}

	for i, desc := range enabled {
		// each worker owns slot i, so no further locking is needed
		g.Go(func() error {
			outcomes[i] = d.attempt(ctx, desc, rc)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (d *Dispatcher) attempt(ctx context.Context, desc api.Descriptor, rc *backend.Context) Outcome {
	start := time.Now()

	if ctx.Err() != nil {
		return d.finish(rc, desc.Name, start, fmt.Errorf("%s: %w", desc.Name, backend.ErrCancelled))
	}

	b, err := d.Registry.New(d.Category, desc.Name)
	if err != nil {
		return d.finish(rc, desc.Name, start, err)
	}
	if err := b.Validate(desc); err != nil {
		return d.finish(rc, desc.Name, start, err)
	}

	return d.finish(rc, desc.Name, start, invoke(ctx, d.Timeout, b, desc, rc))
}

func (d *Dispatcher) finish(rc *backend.Context, name string, start time.Time, err error) Outcome {
	o := Outcome{
		Category: d.Category,
		Backend:  name,
		Status:   statusOf(err),
		Err:      err,
		Duration: time.Since(start),
	}
	logOutcome(rc, o)
	return o
}

func logOutcome(rc *backend.Context, o Outcome) {
	log := rc.Log(o.Category, o.Backend)
	if o.OK() {
		log.Info("backend succeeded", "duration", o.Duration, "dryRun", rc.DryRun)
		return
	}
	log.Warn("backend did not succeed", "status", o.Status, "error", o.Err)
}

// invoke runs b.Execute under the per-backend timeout. A backend that ignores
// its context is abandoned when the deadline passes so it cannot hang the run.
func invoke(ctx context.Context, timeout time.Duration, b backend.Backend, desc api.Descriptor, rc *backend.Context) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- b.Execute(runCtx, rc, desc)
	}()

	return await(ctx, runCtx, timeout, b.Name(), done)
}

// await returns the backend result from done, or an interruption error once
// runCtx ends. A result that is already available when the deadline fires
// wins over the deadline.
func await(ctx, runCtx context.Context, timeout time.Duration, name string, done <-chan error) error {
	select {
	case err := <-done:
		if err != nil && runCtx.Err() != nil {
			return interrupted(ctx, name, timeout, err)
		}
		return backend.Wrap(name, err)
	case <-runCtx.Done():
		select {
		case err := <-done:
			if err == nil {
				return nil
			}
		default:
		}
		return interrupted(ctx, name, timeout, runCtx.Err())
	}
}

func interrupted(parent context.Context, name string, timeout time.Duration, cause error) error {
	if parent.Err() != nil {
		return fmt.Errorf("%s: %w: %v", name, backend.ErrCancelled, cause)
	}
	return fmt.Errorf("%s: %w after %s: %v", name, backend.ErrTimeout, timeout, cause)
}
