package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/wolfman30/llc-formation-platform/internal/config"
	"github.com/wolfman30/llc-formation-platform/internal/events"
	"github.com/wolfman30/llc-formation-platform/pkg/logging"
)

// BuildPublisher returns the transactional outbox and its deliverer when a
// pool is available. Without one, events go straight to handler and the
// returned deliverer is nil.
func BuildPublisher(pool *pgxpool.Pool, handler events.DeliveryHandler, cfg *appconfig.Config, logger *logging.Logger) (events.Publisher, *events.Deliverer) {
	if logger == nil {
		logger = logging.Default()
	}
	if pool == nil {
		logger.Info("outbox disabled, delivering events inline")
		return events.NewDirectPublisher(handler, logger), nil
	}
	store := events.NewOutboxStore(pool)
	deliverer := events.NewDeliverer(store, handler, logger)
	if cfg != nil {
		deliverer = deliverer.
			WithBatchSize(int32(cfg.OutboxBatchSize)).
			WithInterval(cfg.OutboxPollInterval).
			WithMaxAttempts(cfg.OutboxMaxAttempts)
	}
	return store, deliverer
}
