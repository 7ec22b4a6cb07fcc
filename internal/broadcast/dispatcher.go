package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"
)

// DispatcherConfig tunes the outbox polling loop.
type DispatcherConfig struct {
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	PublishTimeout time.Duration
}

// Dispatcher drains committed outbox rows into a Publisher.
type Dispatcher struct {
	outbox    repositories.OutboxRepository
	publisher Publisher
	cfg       DispatcherConfig
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher, filling unset config fields with defaults.
func NewDispatcher(outbox repositories.OutboxRepository, publisher Publisher, cfg DispatcherConfig) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &Dispatcher{outbox: outbox, publisher: publisher, cfg: cfg, now: time.Now}
}

// Run polls until ctx is cancelled. Dispatch errors are logged, never returned.
func (d *Dispatcher) Run(ctx context.Context) error {
	utils.LogInfo("Outbox dispatcher started", map[string]interface{}{
		"poll_interval": d.cfg.PollInterval.String(),
		"batch_size":    d.cfg.BatchSize,
	})
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.LogInfo("Outbox dispatcher stopped")
			return nil
		case <-ticker.C:
			// Keep draining while whole batches publish cleanly.
			for {
				n, err := d.DispatchPending(ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						utils.LogError(err, "Outbox dispatch failed")
					}
					break
				}
				if n < d.cfg.BatchSize {
					break
				}
			}
		}
	}
}

// DispatchPending claims one batch, then publishes it, and returns how many
// events reached the publisher. Rows are claimed before publishing, so an event
// is delivered at most once; a failed publish releases its row for a retry.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	events, err := d.outbox.ClaimPendingEvents(ctx, nil, d.cfg.BatchSize, d.cfg.MaxAttempts, d.now())
	if err != nil {
		return 0, err
	}
	published := 0
	var errs []error
	for i := range events {
		ok, err := d.dispatchOne(ctx, &events[i])
		if err != nil {
			errs = append(errs, err)
		}
		if ok {
			published++
		}
	}
	return published, errors.Join(errs...)
}

func (d *Dispatcher) dispatchOne(ctx context.Context, event *models.OutboxEvent) (bool, error) {
	pubCtx, cancel := context.WithTimeout(ctx, d.cfg.PublishTimeout)
	defer cancel()

	pubErr := d.publisher.Publish(pubCtx, event.Channel, Envelope{Event: event.Event, Payload: event.Payload})
	if pubErr == nil {
		return true, nil
	}

	fields := map[string]interface{}{
		"event_id": event.ID,
		"channel":  event.Channel,
		"event":    event.Event,
		"attempts": event.Attempts,
	}
	if event.Attempts >= d.cfg.MaxAttempts {
		utils.LogError(pubErr, "Dropping broadcast after max attempts", fields)
	} else {
		utils.LogWarn("Broadcast publish failed: "+pubErr.Error(), fields)
	}
	if err := d.outbox.MarkFailed(ctx, nil, event.ID, pubErr.Error()); err != nil {
		return false, fmt.Errorf("releasing outbox event %d: %w", event.ID, err)
	}
	return false, nil
}
