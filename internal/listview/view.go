// Package listview maintains the live, filterable activity list backing one
// mounted view.
package listview

import (
	"context"
	"sync"

	"example.com/sleepbaby/internal/domain"
	"example.com/sleepbaby/internal/feed"
)

// State describes what the view should currently render.
type State int

const (
	// Loading is rendered while the initial query is in flight.
	Loading State = iota
	// Empty means the query succeeded and returned no records.
	Empty
	// Error means the initial query failed and there is nothing to show.
	Error
	// Ready means records are available for display.
	Ready
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Error:
		return "error"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Store is the query surface a view needs. The domain service satisfies it.
type Store interface {
	Query(ctx context.Context, filter domain.Filter, cursor *domain.Cursor, limit int) ([]domain.ActivityRecord, *domain.Cursor, error)
}

// Snapshot is the displayed list state at a point in time. Version increases
// with every applied query completion.
type Snapshot struct {
	State   State
	Records []domain.ActivityRecord
	Err     error
	Version uint64
}

// View owns the backing state of one displayed activity list. It holds at
// most one feed subscription at a time; changing the filter or the caller
// means tearing the view down and starting a fresh one, which releases the
// prior subscription before the new view installs its own.
type View struct {
	store    Store
	hub      *feed.Hub
	identity domain.IdentityResolver
	filter   domain.Filter
	limit    int

	mu      sync.Mutex
	state   State
	records []domain.ActivityRecord
	err     error
	version uint64

	changed chan struct{}
}

// New constructs a view in the Loading state. Nothing is queried or
// subscribed until Run is called.
func New(store Store, hub *feed.Hub, identity domain.IdentityResolver, filter domain.Filter, limit int) *View {
	if filter == "" {
		filter = domain.FilterAll
	}
	return &View{
		store:    store,
		hub:      hub,
		identity: identity,
		filter:   filter,
		limit:    limit,
		state:    Loading,
		changed:  make(chan struct{}, 1),
	}
}

// Filter returns the filter the view was built with.
func (v *View) Filter() domain.Filter {
	return v.filter
}

// Run drives the view until the context is cancelled: resolve the caller,
// subscribe, run the initial query, then re-query on every feed notification.
// The subscription is installed only after the identity is fully resolved and
// is released on every exit path.
func (v *View) Run(ctx context.Context) error {
	caller, ok := v.identity.CurrentCaller(ctx)
	if !ok {
		v.apply(nil, domain.ErrUnauthenticated)
		return domain.ErrUnauthenticated
	}

	// Subscribe before the initial query so a write landing between the two
	// still triggers a re-query.
	sub, err := v.hub.Subscribe(caller.UserID)
	if err != nil {
		v.apply(nil, err)
		return err
	}
	defer sub.Close()

	v.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, open := <-sub.Events():
			if !open {
				return nil
			}
			v.Refresh(ctx)
		}
	}
}

// Refresh runs one full query for the view's filter and applies the result.
// Results are applied in completion order: whichever query completes last
// determines the displayed state, regardless of issue order.
func (v *View) Refresh(ctx context.Context) {
	records, _, err := v.store.Query(ctx, v.filter, nil, v.limit)
	v.apply(records, err)
}

func (v *View) apply(records []domain.ActivityRecord, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.version++
	if err != nil {
		if v.state == Loading {
			v.state = Error
		}
		// After the first successful query the view degrades to the last
		// known list rather than erroring out.
		v.err = err
	} else {
		v.err = nil
		v.records = records
		if len(records) == 0 {
			v.state = Empty
		} else {
			v.state = Ready
		}
	}

	select {
	case v.changed <- struct{}{}:
	default:
	}
}

// Changed signals that Snapshot would return something new. Signals coalesce;
// consumers re-read the snapshot each time.
func (v *View) Changed() <-chan struct{} {
	return v.changed
}

// Snapshot returns a copy of the current view state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	records := make([]domain.ActivityRecord, len(v.records))
	copy(records, v.records)
	return Snapshot{
		State:   v.state,
		Records: records,
		Err:     v.err,
		Version: v.version,
	}
}
