// Package messaging writes lifecycle notifications to the transactional outbox.
// Delivery to external systems is done by a separate relay.
package messaging

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/alem-hub/internship-hub/internal/domain/outbox"
)

// ══════════════════════════════════════════════════════════════════════════════
// OUTBOX PUBLISHER
// ══════════════════════════════════════════════════════════════════════════════

// ErrEmptyDestination is returned when an event has no destination.
var ErrEmptyDestination = errors.New("outbox: destination cannot be empty")

// OutboxPublisher implements outbox.Publisher by appending rows to a repository.
// It never retries; callers decide whether a failure matters.
type OutboxPublisher struct {
	repo   outbox.Repository
	logger *slog.Logger
	now    func() time.Time

	published atomic.Int64
	failed    atomic.Int64
}

var _ outbox.Publisher = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a new OutboxPublisher.
func NewOutboxPublisher(repo outbox.Repository, logger *slog.Logger) *OutboxPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxPublisher{
		repo:   repo,
		logger: logger.With("component", "outbox_publisher"),
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (p *OutboxPublisher) WithClock(now func() time.Time) *OutboxPublisher {
	p.now = now
	return p
}

// Publish serializes payload and appends one immutable row.
func (p *OutboxPublisher) Publish(ctx context.Context, destination string, eventType outbox.EventType, payload any) error {
	if destination == "" {
		return ErrEmptyDestination
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.failed.Add(1)
		return fmt.Errorf("outbox: failed to marshal payload: %w", err)
	}

	event := outbox.Event{
		ID:          uuid.NewString(),
		Destination: destination,
		EventType:   eventType,
		Payload:     data,
		DedupeKey:   DedupeKey(destination, eventType, data),
		CreatedAt:   p.now().UTC(),
	}

	if err := p.repo.Append(ctx, event); err != nil {
		p.failed.Add(1)
		return fmt.Errorf("outbox: failed to append %s: %w", eventType, err)
	}

	p.published.Add(1)
	p.logger.Debug("event enqueued",
		"event_id", event.ID,
		"event_type", eventType,
		"destination", destination,
	)
	return nil
}

// Stats returns the number of appended and failed events since start.
func (p *OutboxPublisher) Stats() (published, failed int64) {
	return p.published.Load(), p.failed.Load()
}

// DedupeKey is a stable digest of an event's content. Two enqueues of the same
// notification share the key, so the relay can drop the duplicate.
func DedupeKey(destination string, eventType outbox.EventType, payload []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(destination))
	h.Write([]byte{0})
	h.Write([]byte(eventType))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
