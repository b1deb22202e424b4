package feed

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLogHandler writes consumed feed events into Postgres so the change
// feed leaves an inspectable trail.
type AuditLogHandler struct {
	pool *pgxpool.Pool
}

// NewAuditLogHandler constructs a handler backed by the provided pool.
func NewAuditLogHandler(pool *pgxpool.Pool) *AuditLogHandler {
	return &AuditLogHandler{pool: pool}
}

// Handle stores the event in the activity_event_log table.
func (h *AuditLogHandler) Handle(ctx context.Context, msg Message) error {
	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO activity_event_log (event_type, owner_id, schema_id, schema_subject, topic, partition, record_offset, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		msg.EventType,
		msg.OwnerID,
		msg.SchemaID,
		msg.SchemaSubject,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		msg.Payload,
		msg.Timestamp,
	)
	return err
}
