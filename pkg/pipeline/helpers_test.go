package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/systemstart/shipyard/pkg/api"
	"github.com/systemstart/shipyard/pkg/backend"
)

// recorder is shared by every fake instance of a test so assertions can see
// calls made on instances the pipeline constructed itself.
type recorder struct {
	mu        sync.Mutex
	executed  []string
	mutations atomic.Int32
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executed = append(r.executed, name)
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.executed...)
}

type fakeBackend struct {
	name        string
	rec         *recorder
	validateErr error
	executeErr  error
	// block waits for the context before returning; ignoreCtx blocks forever.
	block     bool
	ignoreCtx bool
	panicMsg  string
	url       string
	wait      func(ctx context.Context) error
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Validate(api.Descriptor) error { return f.validateErr }

func (f *fakeBackend) Execute(ctx context.Context, rc *backend.Context, _ api.Descriptor) error {
	f.rec.record(f.name)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.ignoreCtx {
		select {}
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.wait != nil {
		if err := f.wait(ctx); err != nil {
			return err
		}
	}
	if f.executeErr != nil {
		return f.executeErr
	}
	if !rc.DryRun {
		f.rec.mutations.Add(1)
	}
	return nil
}

type linkingBackend struct{ *fakeBackend }

func (l linkingBackend) ReleaseURL(rc *backend.Context, _ api.Descriptor) string {
	return l.url + "/" + rc.Tag
}

var errBoom = errors.New("boom")

func register(reg *backend.Registry, category backend.Category, f fakeBackend) {
	reg.MustRegister(category, f.name, func() backend.Backend {
		cp := f
		return &cp
	})
}

func newContext(dryRun bool, cfg *api.Config) *backend.Context {
	if cfg == nil {
		cfg = &api.Config{}
	}
	if cfg.Project.Name == "" {
		cfg.Project = api.Project{Name: "shipyard", Version: "1.0.0"}
	}
	return backend.NewContext(cfg, backend.Options{DryRun: dryRun})
}

func descriptors(enabled ...any) []api.Descriptor {
	var out []api.Descriptor
	for i := 0; i < len(enabled); i += 2 {
		out = append(out, api.Descriptor{Name: enabled[i].(string), Enabled: enabled[i+1].(bool)})
	}
	return out
}
