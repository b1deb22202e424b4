package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/sleepbaby/internal/domain"
)

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

type fakeCreator struct {
	mu      sync.Mutex
	err     error
	calls   int
	drafts  []domain.Draft
	started chan struct{}
	release chan struct{}
}

func (c *fakeCreator) Create(ctx context.Context, draft domain.Draft) (*domain.ActivityRecord, error) {
	c.mu.Lock()
	c.calls++
	c.drafts = append(c.drafts, draft)
	c.mu.Unlock()

	if c.started != nil {
		close(c.started)
	}
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return nil, c.err
	}
	record := draft.Record("activity-1", "user-1", time.Now().UTC())
	return &record, nil
}

func (c *fakeCreator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func intPtr(v int) *int { return &v }

func TestOpenResetsFormToDefaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	ctrl := NewController(&fakeCreator{}, &recordingNotifier{}, WithClock(fixedClock(now)))

	require.NoError(t, ctrl.Open())
	require.Equal(t, Open, ctrl.State())

	form := ctrl.Form()
	require.Equal(t, "nap", form.Kind)
	require.Equal(t, now, form.StartTime)
	require.Empty(t, form.Notes)
}

func TestCancelDiscardsEnteredValues(t *testing.T) {
	now := time.Now()
	ctrl := NewController(&fakeCreator{}, &recordingNotifier{}, WithClock(fixedClock(now)))

	require.NoError(t, ctrl.Open())
	_, err := ctrl.Submit(context.Background(), domain.Input{Kind: "custom", StartTime: now})
	require.Error(t, err)

	require.NoError(t, ctrl.Cancel())
	require.Equal(t, Closed, ctrl.State())

	// Reopening never shows the half-filled session.
	require.NoError(t, ctrl.Open())
	require.Equal(t, "nap", ctrl.Form().Kind)
	require.Empty(t, ctrl.FieldErrors())
}

func TestSubmitRejectsInvalidInputWithoutStoreCall(t *testing.T) {
	creator := &fakeCreator{}
	ctrl := NewController(creator, &recordingNotifier{})

	require.NoError(t, ctrl.Open())
	_, err := ctrl.Submit(context.Background(), domain.Input{Kind: "custom", StartTime: time.Now()})

	var fields domain.FieldErrors
	require.ErrorAs(t, err, &fields)
	require.True(t, fields.Has(domain.FieldCustomName))
	require.Zero(t, creator.callCount())
	require.Equal(t, Open, ctrl.State())
	require.True(t, ctrl.FieldErrors().Has(domain.FieldCustomName))
}

func TestSubmitSuccessClosesAndNotifies(t *testing.T) {
	creator := &fakeCreator{}
	notify := &recordingNotifier{}
	ctrl := NewController(creator, notify)

	require.NoError(t, ctrl.Open())
	record, err := ctrl.Submit(context.Background(), domain.Input{
		Kind:      "nursing",
		StartTime: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		Amount:    intPtr(120),
		Unit:      "ml",
	})
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, domain.KindNursing, record.Kind)

	require.Equal(t, Closed, ctrl.State())
	require.Empty(t, ctrl.Form().Kind)
	require.Equal(t, []string{"Activity logged successfully!"}, notify.successes)
	require.Empty(t, notify.failures)
}

func TestSubmitFailureKeepsFormForRetry(t *testing.T) {
	creator := &fakeCreator{err: errors.New("store offline")}
	notify := &recordingNotifier{}
	ctrl := NewController(creator, notify)

	form := domain.Input{Kind: "diaper", StartTime: time.Now(), DiaperKind: "dirty", Notes: "before the bath"}

	require.NoError(t, ctrl.Open())
	_, err := ctrl.Submit(context.Background(), form)
	require.EqualError(t, err, "store offline")

	require.Equal(t, Open, ctrl.State())
	require.Equal(t, form, ctrl.Form())
	require.Equal(t, []string{"Failed to log activity. Please try again."}, notify.failures)
	require.Empty(t, notify.successes)
}

func TestSubmitWhileSubmittingIsRejected(t *testing.T) {
	creator := &fakeCreator{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	ctrl := NewController(creator, &recordingNotifier{})
	require.NoError(t, ctrl.Open())

	form := domain.Input{Kind: "nap", StartTime: time.Now(), DurationMinutes: intPtr(45)}
	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background(), form)
		done <- err
	}()

	<-creator.started
	require.Equal(t, Submitting, ctrl.State())

	_, err := ctrl.Submit(context.Background(), form)
	require.ErrorIs(t, err, ErrSubmissionInFlight)
	require.ErrorIs(t, ctrl.Open(), ErrSubmissionInFlight)
	require.ErrorIs(t, ctrl.Cancel(), ErrSubmissionInFlight)

	close(creator.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, creator.callCount())
	require.Equal(t, Closed, ctrl.State())
}

func TestSubmitWhileClosedIsRejected(t *testing.T) {
	ctrl := NewController(&fakeCreator{}, &recordingNotifier{})
	_, err := ctrl.Submit(context.Background(), domain.Input{Kind: "nap", StartTime: time.Now(), DurationMinutes: intPtr(30)})
	require.ErrorIs(t, err, ErrDialogClosed)
	require.ErrorIs(t, ctrl.Cancel(), ErrDialogClosed)
}
