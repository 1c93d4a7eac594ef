package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/korobprog/supermock-app-sub000/internal/realtime"
)

// EventChannel is the Redis channel carrying session broadcast events for
// out-of-process consumers (notification senders, other replicas).
const EventChannel = "session_events"

// EventRelay republishes every in-process broadcast-bus event onto a Redis
// channel. It is one subscriber among others; the bus contract is unchanged.
type EventRelay struct {
	rdb    *redis.Client
	logger *zap.Logger
	subID  int
}

func NewEventRelay(rdb *redis.Client, logger *zap.Logger) *EventRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRelay{rdb: rdb, logger: logger}
}

// Attach subscribes the relay to the bus. Call Detach to stop relaying.
func (rl *EventRelay) Attach(bus *realtime.Bus) {
	rl.subID = bus.Subscribe(rl.relay)
}

// Detach unsubscribes the relay from the bus.
func (rl *EventRelay) Detach(bus *realtime.Bus) {
	bus.Unsubscribe(rl.subID)
}

func (rl *EventRelay) relay(ev realtime.SessionEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		rl.logger.Error("failed to encode session event", zap.Error(err))
		return
	}
	if err := rl.rdb.Publish(context.Background(), EventChannel, payload).Err(); err != nil {
		rl.logger.Error("failed to relay session event",
			zap.String("action", ev.Action),
			zap.String("sessionId", ev.Session.ID),
			zap.Error(err))
	}
}
