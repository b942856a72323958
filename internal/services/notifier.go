package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/realtime"
)

type SessionNotifier interface {
	SelectionChanged(ctx context.Context, view *SessionView)
	SceneChanged(ctx context.Context, sessionID uuid.UUID, scene configurator.SceneRecord)
	CatalogReloaded(ctx context.Context, snap *configurator.Snapshot)
}

type sessionNotifier struct {
	emit SSEEmitter
}

func NewSessionNotifier(emit SSEEmitter) SessionNotifier {
	return &sessionNotifier{emit: emit}
}

func (n *sessionNotifier) SelectionChanged(ctx context.Context, view *SessionView) {
	if n == nil || n.emit == nil || view == nil || view.SessionID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.SessionChannel(view.SessionID),
		Event:   realtime.SSEEventSelectionChanged,
		Data:    view,
	})
}

func (n *sessionNotifier) SceneChanged(ctx context.Context, sessionID uuid.UUID, scene configurator.SceneRecord) {
	if n == nil || n.emit == nil || sessionID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.SessionChannel(sessionID),
		Event:   realtime.SSEEventSceneChanged,
		Data: map[string]any{
			"sceneId": scene.SceneID,
			"title":   scene.Title,
		},
	})
}

func (n *sessionNotifier) CatalogReloaded(ctx context.Context, snap *configurator.Snapshot) {
	if n == nil || n.emit == nil || snap == nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.BroadcastChannel,
		Event:   realtime.SSEEventCatalogReloaded,
		Data: map[string]any{
			"scenes":   len(snap.Scenes.Records),
			"loadedAt": snap.LoadedAt,
		},
	})
}
