package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/sleepbaby/internal/domain"
	"example.com/sleepbaby/internal/feed"
	"example.com/sleepbaby/internal/observability"
)

// Repository provides Postgres-backed persistence for activity records and
// their outbox events. Row-level security keyed on app.owner_id keeps every
// query owner-scoped even if a predicate is ever missed.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `activity_id, owner_id, kind, start_time, end_time, duration_minutes, amount, unit, diaper_kind, custom_name, notes, created_at`

// Create persists the record and writes the change-feed outbox row inside a
// single transaction, so the feed fires exactly when the row becomes visible.
func (r *Repository) Create(ctx context.Context, record domain.ActivityRecord) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.owner_id', $1, true)", record.OwnerID); err != nil {
		return err
	}

	insertActivity := `INSERT INTO activities (` + recordColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err = tx.Exec(ctx, insertActivity,
		record.ID,
		record.OwnerID,
		string(record.Kind),
		record.StartTime,
		record.EndTime,
		record.DurationMinutes,
		record.Amount,
		unitValue(record.Unit),
		diaperValue(record.DiaperKind),
		record.CustomName,
		record.Notes,
		record.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = r.insertOutbox(ctx, tx, record, feed.EventActivityRecorded, feed.ActivityRecorded{
		ActivityID: record.ID,
		OwnerID:    record.OwnerID,
		Kind:       string(record.Kind),
		StartTime:  record.StartTime,
		RecordedAt: record.CreatedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(string(record.Kind), record.CreatedAt)
	return nil
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, record domain.ActivityRecord, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	partitionKey := meta.PartitionKeyFn(record)
	dedupeKey := fmt.Sprintf("%s:%s", record.ID, eventType)

	const stmt = `INSERT INTO outbox (owner_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		record.OwnerID,
		"activity",
		record.ID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

// Query returns the owner's records matching the filter, ordered by start
// time descending with id as tiebreaker. A limit <= 0 returns everything.
func (r *Repository) Query(ctx context.Context, ownerID string, filter domain.Filter, cursor *domain.Cursor, limit int) ([]domain.ActivityRecord, *domain.Cursor, error) {
	query := `SELECT ` + recordColumns + ` FROM activities WHERE owner_id=$1`
	args := []interface{}{ownerID}

	if kinds := filter.Kinds(); kinds != nil {
		names := make([]string, 0, len(kinds))
		for _, k := range kinds {
			names = append(names, string(k))
		}
		args = append(args, names)
		query += fmt.Sprintf(` AND kind = ANY($%d)`, len(args))
	}

	if cursor != nil {
		args = append(args, cursor.StartTime, cursor.ID)
		query += fmt.Sprintf(` AND (start_time, activity_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	query += ` ORDER BY start_time DESC, activity_id DESC`

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.owner_id', $1, true)", ownerID); err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.ActivityRecord, 0)
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, nil, scanErr
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if limit > 0 && len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{StartTime: last.StartTime, ID: last.ID}
	}

	return results, nextCursor, nil
}

func scanRecord(rows pgx.Rows) (domain.ActivityRecord, error) {
	var (
		record     domain.ActivityRecord
		kind       string
		unit       *string
		diaperKind *string
		endTime    *time.Time
	)
	if err := rows.Scan(
		&record.ID,
		&record.OwnerID,
		&kind,
		&record.StartTime,
		&endTime,
		&record.DurationMinutes,
		&record.Amount,
		&unit,
		&diaperKind,
		&record.CustomName,
		&record.Notes,
		&record.CreatedAt,
	); err != nil {
		return domain.ActivityRecord{}, err
	}

	record.Kind = domain.Kind(kind)
	record.EndTime = endTime
	if unit != nil {
		u := domain.Unit(*unit)
		record.Unit = &u
	}
	if diaperKind != nil {
		d := domain.DiaperKind(*diaperKind)
		record.DiaperKind = &d
	}
	return record, nil
}

func unitValue(u *domain.Unit) interface{} {
	if u == nil {
		return nil
	}
	return string(*u)
}

func diaperValue(d *domain.DiaperKind) interface{} {
	if d == nil {
		return nil
	}
	return string(*d)
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(domain.ActivityRecord) string
}

var eventCatalog = map[string]EventMetadata{
	feed.EventActivityRecorded: {
		Topic:         "activity_feed",
		SchemaSubject: "activity_feed-value",
		PartitionKeyFn: func(r domain.ActivityRecord) string {
			// Partitioning by owner keeps one caregiver's events ordered.
			return r.OwnerID
		},
	},
}
