package selectionstore

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	sid := uuid.New()

	st, err := s.Get(ctx, sid)
	if err != nil {
		t.Fatalf("Get(empty): %v", err)
	}
	if st.SessionID != sid || len(st.Selection) != 0 || st.SceneID != "" {
		t.Fatalf("Get(empty): unexpected state %+v", st)
	}

	_, err = s.Update(ctx, sid, func(st *SessionState) error {
		st.Selection = st.Selection.Update(configurator.FixtureSink, configurator.FixturePatch{ModelID: configurator.SetID("4")})
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := SetScene(ctx, s, sid, "scene-a"); err != nil {
		t.Fatalf("SetScene: %v", err)
	}

	st, err = s.Get(ctx, sid)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st.SceneID != "scene-a" {
		t.Fatalf("SceneID: want=%q got=%q", "scene-a", st.SceneID)
	}
	if m := st.Selection[configurator.FixtureSink].ModelID; m == nil || *m != "4" {
		t.Fatalf("sink model: got=%v", m)
	}
	if st.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt: want non-zero")
	}

	boom := errors.New("boom")
	if _, err := s.Update(ctx, sid, func(st *SessionState) error {
		st.SceneID = "never-saved"
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Update(fn error): want boom got=%v", err)
	}
	st, _ = s.Get(ctx, sid)
	if st.SceneID != "scene-a" {
		t.Fatalf("failed update was persisted: %q", st.SceneID)
	}

	// concurrent writers to one session all land
	var wg sync.WaitGroup
	fixtures := []configurator.FixtureType{configurator.FixtureBathtub, configurator.FixtureFloor}
	for _, ft := range fixtures {
		wg.Add(1)
		go func(ft configurator.FixtureType) {
			defer wg.Done()
			_, err := s.Update(ctx, sid, func(st *SessionState) error {
				st.Selection = st.Selection.Update(ft, configurator.FixturePatch{ModelID: configurator.SetID("1")})
				return nil
			})
			if err != nil {
				t.Errorf("concurrent Update %s: %v", ft, err)
			}
		}(ft)
	}
	wg.Wait()
	st, _ = s.Get(ctx, sid)
	if len(st.Selection) != 3 {
		t.Fatalf("after concurrent updates: want 3 fixtures got=%v", st.Selection)
	}

	if err := s.Delete(ctx, sid); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	st, _ = s.Get(ctx, sid)
	if st.SceneID != "" {
		t.Fatalf("after Delete: want empty state got=%+v", st)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(0))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	sid := uuid.New()
	st, _ := s.Update(ctx, sid, func(st *SessionState) error {
		st.Selection[configurator.FixtureSink] = configurator.FixtureSelection{ModelID: configurator.IDPtr("4")}
		return nil
	})
	st.Selection[configurator.FixtureSink] = configurator.FixtureSelection{}
	again, _ := s.Get(ctx, sid)
	if again.Selection[configurator.FixtureSink].ModelID == nil {
		t.Fatalf("stored state shares memory with caller")
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore(time.Minute).(*memoryStore)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms.now = func() time.Time { return now }

	sid := uuid.New()
	if _, err := SetScene(ctx, ms, sid, "scene-a"); err != nil {
		t.Fatalf("SetScene: %v", err)
	}
	now = now.Add(30 * time.Second)
	if st, _ := ms.Get(ctx, sid); st.SceneID != "scene-a" {
		t.Fatalf("before ttl: want scene-a got=%q", st.SceneID)
	}
	now = now.Add(2 * time.Minute)
	if st, _ := ms.Get(ctx, sid); st.SceneID != "" {
		t.Fatalf("after ttl: want empty got=%q", st.SceneID)
	}
}

func TestMemoryStoreReclaimsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore(time.Minute).(*memoryStore)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ms.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		if _, err := SetScene(ctx, ms, uuid.New(), "scene-a"); err != nil {
			t.Fatalf("SetScene: %v", err)
		}
	}
	now = now.Add(30 * time.Second)
	live := uuid.New()
	if _, err := SetScene(ctx, ms, live, "scene-b"); err != nil {
		t.Fatalf("SetScene(live): %v", err)
	}
	if len(ms.sessions) != 51 {
		t.Fatalf("sessions before expiry: want=51 got=%d", len(ms.sessions))
	}

	// Only the abandoned sessions have expired; none of them is read again.
	now = now.Add(45 * time.Second)
	if _, err := ms.Get(ctx, uuid.New()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(ms.sessions) != 1 || len(ms.expires) != 1 {
		t.Fatalf("sessions after sweep: want=1 got=%d (expires %d)", len(ms.sessions), len(ms.expires))
	}
	if st, _ := ms.Get(ctx, live); st.SceneID != "scene-b" {
		t.Fatalf("live session: want scene-b got=%q", st.SceneID)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis store tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis ping: %v", err)
	}
	exerciseStore(t, NewRedisStore(rdb, time.Minute, "tourconfig-test:"+uuid.NewString()+":"))
}
