package postgres

import (
	"context"
	"fmt"

	"github.com/alem-hub/internship-hub/internal/domain/outbox"
)

// OutboxRepository implements outbox.Repository for PostgreSQL.
type OutboxRepository struct {
	conn *Connection
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(conn *Connection) *OutboxRepository {
	return &OutboxRepository{conn: conn}
}

// Append inserts one event row.
func (r *OutboxRepository) Append(ctx context.Context, e outbox.Event) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO outbox_events (id, destination, event_type, payload, dedupe_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Destination, string(e.EventType), []byte(e.Payload), e.DedupeKey, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append outbox event: %w", err)
	}
	return nil
}
