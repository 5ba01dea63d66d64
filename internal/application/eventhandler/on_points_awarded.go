package eventhandler

import (
	"context"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/domain/points"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
)

// OnPointsAwardedHandler keeps the leaderboard projection in sync with the
// balances table. The projection is best-effort: a failed update is logged
// and the next award or the periodic rebuild corrects the drift.
type OnPointsAwardedHandler struct {
	board   points.Leaderboard
	timeout time.Duration
	log     *logger.Logger
}

// NewOnPointsAwardedHandler creates an OnPointsAwardedHandler.
func NewOnPointsAwardedHandler(board points.Leaderboard, log *logger.Logger) *OnPointsAwardedHandler {
	return &OnPointsAwardedHandler{
		board:   board,
		timeout: 5 * time.Second,
		log:     log,
	}
}

// Register subscribes the handler to points events.
func (h *OnPointsAwardedHandler) Register(bus shared.EventBus) error {
	return bus.Subscribe(shared.EventPointsAwarded, shared.EventHandlerFunc(h.Handle))
}

// Handle writes the new total into the projection.
func (h *OnPointsAwardedHandler) Handle(event shared.Event) error {
	awarded, ok := event.(shared.PointsAwardedEvent)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.board.SetScore(ctx, awarded.AggregateID(), awarded.NewTotal); err != nil {
		if h.log != nil {
			h.log.Warn("leaderboard update failed",
				logger.String("user_id", awarded.AggregateID()),
				logger.Err(err),
			)
		}
		return err
	}
	return nil
}
