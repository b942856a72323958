package selectionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "tourconfig:session:"
	maxTxRetries     = 8
)

type redisStore struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewRedisStore keeps each session as one JSON value with a sliding TTL.
func NewRedisStore(rdb goredis.UniversalClient, ttl time.Duration, prefix string) Store {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisStore{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (r *redisStore) key(sessionID uuid.UUID) string {
	return r.prefix + sessionID.String()
}

func (r *redisStore) Get(ctx context.Context, sessionID uuid.UUID) (*SessionState, error) {
	return r.read(ctx, r.rdb, sessionID)
}

func (r *redisStore) read(ctx context.Context, c goredis.Cmdable, sessionID uuid.UUID) (*SessionState, error) {
	raw, err := c.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return newState(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	st := newState(sessionID)
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return st, nil
}

// Update retries the WATCH transaction when another writer touched the key.
func (r *redisStore) Update(ctx context.Context, sessionID uuid.UUID, fn func(st *SessionState) error) (*SessionState, error) {
	key := r.key(sessionID)
	var out *SessionState
	txf := func(tx *goredis.Tx) error {
		st, err := r.read(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		st.SessionID = sessionID
		st.UpdatedAt = time.Now().UTC()
		raw, err := json.Marshal(st)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = st
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

func (r *redisStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return r.rdb.Del(ctx, r.key(sessionID)).Err()
}
