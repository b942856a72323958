package services

import (
	"context"

	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/realtime"
	"github.com/yungbote/tourconfig-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// RedisEmitter publishes through the bus; the forwarder on every instance
// (this one included) hands the message to its local hub. If publishing
// fails the message is delivered locally only.
type RedisEmitter struct {
	Bus bus.Bus
	Hub *realtime.SSEHub
	Log *logger.Logger
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil {
		if e.Log != nil {
			e.Log.Warn("SSE bus publish failed; delivering locally", "event", msg.Event, "error", err)
		}
		if e.Hub != nil {
			e.Hub.Broadcast(msg)
		}
	}
}
