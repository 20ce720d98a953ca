package backend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownBackend       = errors.New("unknown backend")
	ErrDuplicateBackend     = errors.New("duplicate backend registration")
	ErrRegistrySealed       = errors.New("backend registry sealed")
	ErrNoReleaserConfigured = errors.New("no releaser configured")
	ErrAmbiguousReleaser    = errors.New("more than one releaser enabled")
	ErrTimeout              = errors.New("backend timed out")
	ErrCancelled            = errors.New("backend cancelled")
)

// ConfigError reports a descriptor payload that does not satisfy a backend.
type ConfigError struct {
	Backend string
	Field   string
	Msg     string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: invalid config: %s", e.Backend, e.Msg)
	}
	return fmt.Sprintf("%s: invalid config %q: %s", e.Backend, e.Field, e.Msg)
}

// RequireFields returns a *ConfigError naming the first missing field, or nil.
func RequireFields(backend string, missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	msg := "must not be blank"
	if len(missing) > 1 {
		msg = fmt.Sprintf("must not be blank (also missing: %s)", strings.Join(missing[1:], ", "))
	}
	return &ConfigError{Backend: backend, Field: missing[0], Msg: msg}
}

// BackendError wraps a failure raised while executing a backend.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Wrap attributes err to the named backend. Errors that already carry a
// backend are returned unchanged.
func Wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}
	return &BackendError{Backend: name, Err: err}
}

// ResolutionError reports why no single releaser could be selected.
type ResolutionError struct {
	Kind  error
	Names []string
}

func (e *ResolutionError) Error() string {
	if len(e.Names) == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), strings.Join(e.Names, ", "))
}

func (e *ResolutionError) Unwrap() error { return e.Kind }
