// Package eventhandler contains the reactions to ledger events.
package eventhandler

import (
	"context"
	"time"

	"github.com/prepdeck/prepdeck-backend/internal/application/command"
	"github.com/prepdeck/prepdeck-backend/internal/domain/shared"
	"github.com/prepdeck/prepdeck-backend/pkg/logger"
)

// OnActivityHandler reacts to progress, response, and session events by
// running an achievement sweep for the user. The sweep is idempotent, so
// reacting to several event types for the same user is harmless.
type OnActivityHandler struct {
	check   *command.CheckAchievementsHandler
	timeout time.Duration
	log     *logger.Logger
}

// NewOnActivityHandler creates an OnActivityHandler.
func NewOnActivityHandler(check *command.CheckAchievementsHandler, log *logger.Logger) *OnActivityHandler {
	return &OnActivityHandler{
		check:   check,
		timeout: 10 * time.Second,
		log:     log,
	}
}

// Register subscribes the handler to the events it reacts to.
func (h *OnActivityHandler) Register(bus shared.EventBus) error {
	for _, t := range []shared.EventType{shared.EventProgressRecorded, shared.EventResponseRecorded, shared.EventSessionRecorded} {
		if err := bus.Subscribe(t, shared.EventHandlerFunc(h.Handle)); err != nil {
			return err
		}
	}
	return nil
}

// Handle runs the sweep for the user named by the event.
func (h *OnActivityHandler) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	result, err := h.check.Handle(ctx, event.AggregateID())
	if err != nil {
		return err
	}

	if h.log != nil && len(result.Unlocked) > 0 {
		h.log.Info("event-driven sweep unlocked achievements",
			logger.String("user_id", event.AggregateID()),
			logger.String("trigger", string(event.EventType())),
			logger.Int("count", len(result.Unlocked)),
		)
	}
	return nil
}
