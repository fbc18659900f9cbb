package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hotel-pms/models"

	"github.com/go-redis/redis/v8"
)

const (
	criteriaKey  = "hotel-pms:room-filter:criteria"
	selectionKey = "hotel-pms:room-filter:selection"

	// stale tablet state expires on its own
	entryTTL = 12 * time.Hour

	maxWatchRetries = 10
)

// RedisStore shares tablet state between API replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient builds a client from the connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping tests the redis connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) SaveCriteria(ctx context.Context, c models.RoomFilterCriteria) error {
	return r.setJSON(ctx, criteriaKey, c)
}

func (r *RedisStore) Criteria(ctx context.Context) (*models.RoomFilterCriteria, error) {
	var c models.RoomFilterCriteria
	found, err := r.getJSON(ctx, criteriaKey, &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// SaveSelection stamps and writes under WATCH so replicas racing on the
// same millisecond still get distinct timestamps.
func (r *RedisStore) SaveSelection(ctx context.Context, s models.GuestSelection) (*models.GuestSelection, error) {
	stamp := func(tx *redis.Tx) error {
		var prev models.GuestSelection
		raw, err := tx.Get(ctx, selectionKey).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get %s: %w", selectionKey, err)
		default:
			if err := json.Unmarshal(raw, &prev); err != nil {
				return fmt.Errorf("decode %s: %w", selectionKey, err)
			}
			if s.Timestamp <= prev.Timestamp {
				s.Timestamp = prev.Timestamp + 1
			}
		}
		out, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, selectionKey, out, entryTTL)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxWatchRetries; attempt++ {
		err := r.client.Watch(ctx, stamp, selectionKey)
		if err == nil {
			return &s, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("redis save selection: %w", err)
		}
	}
	return nil, fmt.Errorf("redis save selection: %w", redis.TxFailedErr)
}

func (r *RedisStore) Selection(ctx context.Context) (*models.GuestSelection, error) {
	var s models.GuestSelection
	found, err := r.getJSON(ctx, selectionKey, &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) ClearSelection(ctx context.Context) error {
	if err := r.client.Del(ctx, selectionKey).Err(); err != nil {
		return fmt.Errorf("redis del selection: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, raw, entryTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
