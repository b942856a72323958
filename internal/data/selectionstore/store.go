package selectionstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
)

// ErrConflict is returned when an update keeps losing to concurrent writers.
var ErrConflict = errors.New("selection update conflict")

// SessionState is everything the service keeps per browser session.
type SessionState struct {
	SessionID uuid.UUID              `json:"sessionId"`
	Selection configurator.Selection `json:"selection"`
	SceneID   string                 `json:"sceneId,omitempty"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func newState(sessionID uuid.UUID) *SessionState {
	return &SessionState{SessionID: sessionID, Selection: configurator.Selection{}}
}

// Store persists session state. Update is a read-modify-write of one session:
// fn sees the latest state and its changes are saved atomically, so two
// writers to the same session never interleave. Across sessions the last
// write wins.
type Store interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*SessionState, error)
	Update(ctx context.Context, sessionID uuid.UUID, fn func(st *SessionState) error) (*SessionState, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// SetScene records the scene the viewer is showing for the session.
func SetScene(ctx context.Context, s Store, sessionID uuid.UUID, sceneID string) (*SessionState, error) {
	return s.Update(ctx, sessionID, func(st *SessionState) error {
		st.SceneID = sceneID
		return nil
	})
}
