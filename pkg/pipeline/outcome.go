package pipeline

import (
	"errors"
	"time"

	"github.com/systemstart/shipyard/pkg/backend"
)

// Status is the result class of one backend attempt.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusTimeout
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusTimeout:
		return "timeout"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome records the result of one attempted backend.
type Outcome struct {
	Category backend.Category
	Backend  string
	Status   Status
	Err      error
	Duration time.Duration
}

// OK reports whether the backend succeeded.
func (o Outcome) OK() bool { return o.Status == StatusSuccess }

// OutcomeSet holds one outcome per attempted backend, in configuration order.
type OutcomeSet []Outcome

// Degraded reports whether any backend failed or timed out.
func (s OutcomeSet) Degraded() bool {
	for _, o := range s {
		if o.Status == StatusFailure || o.Status == StatusTimeout {
			return true
		}
	}
	return false
}

// Failed returns the names of every backend that did not succeed.
func (s OutcomeSet) Failed() []string {
	var names []string
	for _, o := range s {
		if !o.OK() {
			names = append(names, o.Backend)
		}
	}
	return names
}

// Err joins the errors of every backend that did not succeed.
func (s OutcomeSet) Err() error {
	var errs []error
	for _, o := range s {
		if !o.OK() && o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, backend.ErrCancelled):
		return StatusCancelled
	case errors.Is(err, backend.ErrTimeout):
		return StatusTimeout
	default:
		return StatusFailure
	}
}
