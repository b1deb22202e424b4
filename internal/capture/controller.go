// Package capture implements the dialog flow for logging one new activity:
// open with a reset form, validate, submit once, and report the outcome.
package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"example.com/sleepbaby/internal/domain"
)

// State is the dialog's position in its lifecycle.
type State int

const (
	// Closed means no capture is in progress.
	Closed State = iota
	// Open means the form is visible and editable.
	Open
	// Submitting means a create call is in flight; no new input is accepted.
	Submitting
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

var (
	// ErrDialogClosed is returned for submissions or cancellations while the
	// dialog is not open.
	ErrDialogClosed = errors.New("capture dialog is not open")
	// ErrSubmissionInFlight is returned when a second submission arrives
	// before the first completes.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
)

const (
	successMessage = "Activity logged successfully!"
	failureMessage = "Failed to log activity. Please try again."
)

// Creator persists validated drafts. The domain service satisfies it.
type Creator interface {
	Create(ctx context.Context, draft domain.Draft) (*domain.ActivityRecord, error)
}

// Notifier receives the user-facing outcome of a submission.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Controller coordinates one capture dialog instance. All methods are safe
// for concurrent use; at most one submission runs at a time.
type Controller struct {
	creator Creator
	notify  Notifier
	now     func() time.Time

	mu     sync.Mutex
	state  State
	form   domain.Input
	errors domain.FieldErrors
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for form defaults.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController constructs a closed dialog.
func NewController(creator Creator, notify Notifier, opts ...Option) *Controller {
	c := &Controller{
		creator: creator,
		notify:  notify,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open transitions to the editable state with the form reset to defaults.
// Values left over from a cancelled or completed session never reappear.
func (c *Controller) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Submitting {
		return ErrSubmissionInFlight
	}
	c.state = Open
	c.form = domain.Input{
		Kind:      string(domain.KindNap),
		StartTime: c.now(),
	}
	c.errors = nil
	return nil
}

// Cancel discards the form without persisting anything.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Submitting:
		return ErrSubmissionInFlight
	case Closed:
		return ErrDialogClosed
	}
	c.state = Closed
	c.form = domain.Input{}
	c.errors = nil
	return nil
}

// Submit validates the form and, if it parses, runs the create call. Field
// errors keep the dialog open with the entered values and never reach the
// store. A store failure also keeps the values so the user can retry; success
// closes the dialog.
func (c *Controller) Submit(ctx context.Context, form domain.Input) (*domain.ActivityRecord, error) {
	c.mu.Lock()
	switch c.state {
	case Submitting:
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case Closed:
		c.mu.Unlock()
		return nil, ErrDialogClosed
	}

	c.form = form
	draft, err := domain.ParseDraft(form)
	if err != nil {
		var fields domain.FieldErrors
		if errors.As(err, &fields) {
			c.errors = fields
		}
		c.mu.Unlock()
		return nil, err
	}

	c.state = Submitting
	c.errors = nil
	c.mu.Unlock()

	// The create runs to completion; there is no cancellation of an
	// in-flight submission.
	record, err := c.creator.Create(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Open
		c.notify.Error(failureMessage)
		return nil, err
	}

	c.state = Closed
	c.form = domain.Input{}
	c.notify.Success(successMessage)
	return record, nil
}

// State reports the current dialog state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Form returns the current form contents.
func (c *Controller) Form() domain.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// FieldErrors returns the validation errors from the last rejected submit.
func (c *Controller) FieldErrors() domain.FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors
}
