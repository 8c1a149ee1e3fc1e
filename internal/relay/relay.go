// Package relay drains the outbox into kafka. It is the only background
// task in the process and runs solely when brokers are configured.
package relay

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuongthieu-itme/ecm-be/pkg/kafka"
	"github.com/cuongthieu-itme/ecm-be/pkg/logging"
	"github.com/cuongthieu-itme/ecm-be/pkg/outbox"
)

const batchSize = 100

type Relay struct {
	pool   *pgxpool.Pool
	client *kafka.Client
	every  time.Duration
}

func New(pool *pgxpool.Pool, client *kafka.Client, every time.Duration) *Relay {
	return &Relay{pool: pool, client: client, every: every}
}

// Run polls until ctx is cancelled. Publish failures leave the record
// pending; the next tick retries it, so delivery is at-least-once.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	records, err := outbox.FetchPending(ctx, r.pool, batchSize)
	if err != nil {
		logging.Log(logging.Fields{Service: "outbox-relay", Status: "fetch_error", Message: err.Error()})
		return
	}
	for _, rec := range records {
		if err := r.client.Publish(ctx, rec.Topic, rec.Key, rec.Payload); err != nil {
			logging.Log(logging.Fields{Service: "outbox-relay", Status: "publish_error", Message: err.Error()})
			return
		}
		if err := outbox.MarkSent(ctx, r.pool, rec.ID); err != nil {
			logging.Log(logging.Fields{Service: "outbox-relay", Status: "mark_error", Message: err.Error()})
			return
		}
	}
}
