package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

const (
	defaultBatchSize   int32 = 25
	defaultInterval          = 2 * time.Second
	defaultMaxAttempts       = 5
)

// Deliverer polls the outbox and hands each pending entry to a handler.
// Entries that keep failing are parked after maxAttempts tries.
type Deliverer struct {
	store       *OutboxStore
	handler     DeliveryHandler
	logger      *logging.Logger
	batchSize   int32
	interval    time.Duration
	maxAttempts int
}

func NewDeliverer(store *OutboxStore, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:       store,
		handler:     handler,
		logger:      logger,
		batchSize:   defaultBatchSize,
		interval:    defaultInterval,
		maxAttempts: defaultMaxAttempts,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

func (d *Deliverer) WithMaxAttempts(n int) *Deliverer {
	if n > 0 {
		d.maxAttempts = n
	}
	return d
}

// Start drains the outbox every interval until ctx is cancelled.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

// drain delivers one batch and returns how many entries succeeded.
func (d *Deliverer) drain(ctx context.Context) int {
	entries, err := d.store.FetchPending(ctx, d.batchSize, d.maxAttempts)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return 0
	}
	delivered := 0
	for _, entry := range entries {
		log := d.logger.With("event_id", entry.ID, "type", entry.Type, "attempt", entry.Attempts+1)
		if err := d.handler.Handle(ctx, entry); err != nil {
			log.Warn("outbox delivery failed", "error", err)
			if markErr := d.store.MarkFailed(ctx, entry.ID, err); markErr != nil {
				log.Error("failed to record outbox failure", "error", markErr)
			}
			if entry.Attempts+1 >= d.maxAttempts {
				log.Error("outbox entry parked after max attempts")
			}
			continue
		}
		ok, err := d.store.MarkDelivered(ctx, entry.ID)
		if err != nil {
			log.Error("failed to mark outbox delivered", "error", err)
			continue
		}
		if ok {
			delivered++
		}
	}
	return delivered
}

// DirectPublisher hands events straight to a handler. It backs runs
// without a database, where there is no outbox table to poll.
type DirectPublisher struct {
	handler DeliveryHandler
	logger  *logging.Logger
}

func NewDirectPublisher(handler DeliveryHandler, logger *logging.Logger) *DirectPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &DirectPublisher{handler: handler, logger: logger}
}

// Publish delivers evt synchronously. Handler failures are logged and never
// fail the request that raised the event.
func (p *DirectPublisher) Publish(ctx context.Context, aggregate string, evt Event) error {
	if p == nil || p.handler == nil || evt == nil {
		return nil
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", evt.EventType(), err)
	}
	entry := OutboxEntry{
		ID:        uuid.New(),
		Aggregate: aggregate,
		Type:      evt.EventType(),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.handler.Handle(ctx, entry); err != nil {
		p.logger.Error("direct delivery failed", "error", err, "type", entry.Type, "aggregate", aggregate)
	}
	return nil
}
