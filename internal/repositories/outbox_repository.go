package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"resto_pos_backend/internal/models"
)

// OutboxRepository stores broadcasts until the dispatcher hands them to the broker.
type OutboxRepository interface {
	EnqueueEvent(ctx context.Context, exec SQLExecutor, event *models.OutboxEvent) error
	// ClaimPendingEvents marks up to limit undispatched rows, tried fewer than
	// maxAttempts times, as dispatched at the given time and returns them. The
	// claim is one statement, so it commits before anything is published.
	ClaimPendingEvents(ctx context.Context, exec SQLExecutor, limit, maxAttempts int, at time.Time) ([]models.OutboxEvent, error)
	// MarkFailed releases a claimed row for another attempt.
	MarkFailed(ctx context.Context, exec SQLExecutor, eventID int64, reason string) error
}

type outboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository creates a new instance of OutboxRepository.
func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) EnqueueEvent(ctx context.Context, exec SQLExecutor, event *models.OutboxEvent) error {
	exec = orDB(exec, r.db)
	query := `INSERT INTO outbox_events (channel, event, payload, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	err := exec.QueryRowContext(ctx, query, event.Channel, event.Event, string(event.Payload), event.CreatedAt).Scan(&event.ID)
	return wrapDBError(err, fmt.Sprintf("enqueueing %s on %s", event.Event, event.Channel))
}

func (r *outboxRepository) ClaimPendingEvents(ctx context.Context, exec SQLExecutor, limit, maxAttempts int, at time.Time) ([]models.OutboxEvent, error) {
	exec = orDB(exec, r.db)
	query := `UPDATE outbox_events
	          SET dispatched_at = $3, attempts = attempts + 1
	          WHERE id IN (
	              SELECT id FROM outbox_events
	              WHERE dispatched_at IS NULL AND attempts < $1
	              ORDER BY id
	              LIMIT $2
	              FOR UPDATE SKIP LOCKED)
	          RETURNING id, channel, event, payload, attempts, last_error, dispatched_at, created_at`
	rows, err := exec.QueryContext(ctx, query, maxAttempts, limit, at)
	if err != nil {
		return nil, wrapDBError(err, "claiming pending outbox events")
	}
	defer rows.Close()

	events := []models.OutboxEvent{}
	for rows.Next() {
		var e models.OutboxEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.Channel, &e.Event, &payload, &e.Attempts, &e.LastError, &e.DispatchedAt, &e.CreatedAt); err != nil {
			return nil, wrapDBError(err, "scanning outbox event")
		}
		e.Payload = payload
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating outbox rows")
	}
	// RETURNING does not preserve the subquery order.
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, exec SQLExecutor, eventID int64, reason string) error {
	exec = orDB(exec, r.db)
	result, err := exec.ExecContext(ctx,
		`UPDATE outbox_events SET dispatched_at = NULL, last_error = $1 WHERE id = $2`, reason, eventID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("marking outbox event %d failed", eventID))
	}
	return expectAffected(result, fmt.Sprintf("outbox failure ID %d", eventID))
}
