package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Identity identifies the authenticated caregiver performing an operation.
type Identity struct {
	UserID string
}

// IdentityResolver yields the current caller, if any. Implementations must
// reflect the identity at the time of the call; sessions can refresh, so a
// value captured earlier may be stale.
type IdentityResolver interface {
	CurrentCaller(ctx context.Context) (Identity, bool)
}

// Repository captures persistence operations for activity records. Query
// returns records ordered by start time descending (ties broken by id
// descending); callers rely on that ordering.
type Repository interface {
	Create(ctx context.Context, record ActivityRecord) error
	Query(ctx context.Context, ownerID string, filter Filter, cursor *Cursor, limit int) ([]ActivityRecord, *Cursor, error)
}

// Service orchestrates activity workflows. Both operations re-resolve the
// caller identity on every call rather than reusing a captured value.
type Service struct {
	repo     Repository
	identity IdentityResolver
}

// NewService constructs a Service.
func NewService(repo Repository, identity IdentityResolver) *Service {
	return &Service{repo: repo, identity: identity}
}

// Create persists a validated draft on behalf of the current caller. The
// store assigns the id and creation timestamp; the owner is always the caller.
func (s *Service) Create(ctx context.Context, draft Draft) (*ActivityRecord, error) {
	caller, ok := s.identity.CurrentCaller(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	record := draft.Record(uuid.NewString(), caller.UserID, time.Now().UTC())
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist activity: %w", err)
	}
	return &record, nil
}

// Query returns the caller's records matching the filter, most recent first.
// A limit <= 0 returns everything.
func (s *Service) Query(ctx context.Context, filter Filter, cursor *Cursor, limit int) ([]ActivityRecord, *Cursor, error) {
	caller, ok := s.identity.CurrentCaller(ctx)
	if !ok {
		return nil, nil, ErrUnauthenticated
	}
	if filter == "" {
		filter = FilterAll
	}
	if !filter.Known() {
		return nil, nil, fmt.Errorf("unknown filter %q", filter)
	}
	return s.repo.Query(ctx, caller.UserID, filter, cursor, limit)
}
