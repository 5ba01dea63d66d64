package eventhandler

import (
	"context"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/domain/progress"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
)

// OnStatsChangedHandler drops the user's cached analytics snapshot after any
// ledger write that changes it. Invalidation is best-effort: the cache TTL
// bounds staleness if a drop is lost.
type OnStatsChangedHandler struct {
	cache   progress.AnalyticsCache
	timeout time.Duration
	log     *logger.Logger
}

// NewOnStatsChangedHandler creates an OnStatsChangedHandler.
func NewOnStatsChangedHandler(cache progress.AnalyticsCache, log *logger.Logger) *OnStatsChangedHandler {
	return &OnStatsChangedHandler{
		cache:   cache,
		timeout: 5 * time.Second,
		log:     log,
	}
}

// Register subscribes the handler to every event that moves a statistic the
// snapshot reports.
func (h *OnStatsChangedHandler) Register(bus shared.EventBus) error {
	types := []shared.EventType{
		shared.EventProgressRecorded,
		shared.EventResponseRecorded,
		shared.EventSessionRecorded,
		shared.EventStreakStarted,
		shared.EventStreakExtended,
		shared.EventStreakReset,
		shared.EventPointsAwarded,
	}
	for _, t := range types {
		if err := bus.Subscribe(t, shared.EventHandlerFunc(h.Handle)); err != nil {
			return err
		}
	}
	return nil
}

// Handle invalidates the snapshot for the event's user.
func (h *OnStatsChangedHandler) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.cache.Invalidate(ctx, event.AggregateID()); err != nil {
		if h.log != nil {
			h.log.Warn("analytics cache invalidation failed",
				logger.String("user_id", event.AggregateID()),
				logger.Err(err),
			)
		}
		return err
	}
	return nil
}
