package backend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/systemstart/shipyard/pkg/api"
)

type stubBackend struct{ name string }

func (s *stubBackend) Name() string                  { return s.name }
func (s *stubBackend) Validate(api.Descriptor) error { return nil }
func (s *stubBackend) Execute(context.Context, *Context, api.Descriptor) error {
	return nil
}

func stubFactory(name string) Factory {
	return func() Backend { return &stubBackend{name: name} }
}

func TestRegisterAndNew(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(Releaser, "github", stubFactory("github")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	b, err := r.New(Releaser, "github")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Name() != "github" {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestNew_FreshInstancePerCall(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Announcer, "discord", stubFactory("discord"))

	a, _ := r.New(Announcer, "discord")
	b, _ := r.New(Announcer, "discord")
	if a == b {
		t.Error("expected a fresh instance per lookup")
	}
}

func TestNew_Unknown(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Releaser, "github", stubFactory("github"))

	_, err := r.New(Announcer, "github")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("want ErrUnknownBackend, got %v", err)
	}
	if err.Error() != "unknown backend: announcer/github" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Packager, "snap", stubFactory("snap"))

	err := r.Register(Packager, "SNAP", stubFactory("snap"))
	if !errors.Is(err, ErrDuplicateBackend) {
		t.Fatalf("want ErrDuplicateBackend, got %v", err)
	}

	// same name in another category is fine
	if err := r.Register(Announcer, "snap", stubFactory("snap")); err != nil {
		t.Fatalf("Register in other category: %v", err)
	}
}

func TestRegister_Invalid(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("", "x", stubFactory("x")); err == nil {
		t.Fatal("expected error for empty category")
	}
	if err := r.Register(Releaser, "", stubFactory("x")); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := r.Register(Releaser, "x", nil); err == nil {
		t.Fatal("expected error for nil factory")
	}
}

func TestSeal(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Releaser, "github", stubFactory("github"))

	if !r.Seal() {
		t.Fatal("Seal() = false on first call")
	}
	if r.Seal() {
		t.Fatal("Seal() = true on second call")
	}
	if !r.Sealed() {
		t.Fatal("Sealed() = false")
	}

	err := r.Register(Releaser, "gitlab", stubFactory("gitlab"))
	if !errors.Is(err, ErrRegistrySealed) {
		t.Fatalf("want ErrRegistrySealed, got %v", err)
	}

	if _, err := r.New(Releaser, "github"); err != nil {
		t.Fatalf("New after Seal: %v", err)
	}
}

func TestMustRegister_Panics(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Releaser, "github", stubFactory("github"))

	defer func() {
		if rec := recover(); rec == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	r.MustRegister(Releaser, "github", stubFactory("github"))
}

func TestKeysAndNames(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Packager, "snap", stubFactory("snap"))
	r.MustRegister(Announcer, "twitter", stubFactory("twitter"))
	r.MustRegister(Packager, "Homebrew", stubFactory("homebrew"))
	r.MustRegister(Announcer, "discord", stubFactory("discord"))

	want := []Key{
		{Announcer, "discord"},
		{Announcer, "twitter"},
		{Packager, "homebrew"},
		{Packager, "snap"},
	}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := r.Names(Packager); !reflect.DeepEqual(got, []string{"homebrew", "snap"}) {
		t.Errorf("Names(packager) = %v", got)
	}
	if !r.Has(Packager, "HOMEBREW") {
		t.Error("Has should be case-insensitive")
	}
}

func TestConcurrentNew(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Announcer, "discord", stubFactory("discord"))
	r.Seal()

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := r.New(Announcer, "discord")
			if err != nil {
				errs <- err
				return
			}
			if b.Name() != "discord" {
				errs <- fmt.Errorf("got %q", b.Name())
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent New: %v", err)
	}
}
