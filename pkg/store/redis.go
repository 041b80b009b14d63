package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harrisonrobin/habitask/pkg/model"
)

// DefaultRedisPrefix namespaces every key the store writes.
const DefaultRedisPrefix = "habitask:"

// maxTxAttempts bounds optimistic retries when another writer touches the
// key between WATCH and EXEC.
const maxTxAttempts = 5

// RedisStore keeps each collection as a JSON array under its own key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(ctx context.Context, redisURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, prefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) tasksKey() string    { return s.prefix + "tasks" }
func (s *RedisStore) routinesKey() string { return s.prefix + "routines" }

func (s *RedisStore) Tasks(ctx context.Context) ([]model.Task, error) {
	return readCollection(ctx, s.client, s.tasksKey(), prepareTasks)
}

func (s *RedisStore) Routines(ctx context.Context) ([]model.Routine, error) {
	return readCollection(ctx, s.client, s.routinesKey(), prepareRoutines)
}

func (s *RedisStore) ReplaceTasks(ctx context.Context, tasks []model.Task) error {
	prepared, err := prepareTasks(tasks)
	if err != nil {
		return err
	}
	return writeCollection(ctx, s.client, s.tasksKey(), prepared)
}

func (s *RedisStore) ReplaceRoutines(ctx context.Context, routines []model.Routine) error {
	prepared, err := prepareRoutines(routines)
	if err != nil {
		return err
	}
	return writeCollection(ctx, s.client, s.routinesKey(), prepared)
}

func (s *RedisStore) PatchTask(ctx context.Context, p model.TaskPatch) (model.Task, error) {
	var updated model.Task
	err := s.update(ctx, s.tasksKey(), func(tx *redis.Tx) error {
		tasks, err := readCollection(ctx, tx, s.tasksKey(), prepareTasks)
		if err != nil {
			return err
		}
		next, task, err := patchTasks(tasks, p)
		if err != nil {
			return err
		}
		updated = task
		return writeInTx(ctx, tx, s.tasksKey(), next)
	})
	if err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

func (s *RedisStore) PatchRoutine(ctx context.Context, p model.RoutinePatch) (model.Routine, error) {
	var updated model.Routine
	err := s.update(ctx, s.routinesKey(), func(tx *redis.Tx) error {
		routines, err := readCollection(ctx, tx, s.routinesKey(), prepareRoutines)
		if err != nil {
			return err
		}
		next, routine, err := patchRoutines(routines, p)
		if err != nil {
			return err
		}
		updated = routine
		return writeInTx(ctx, tx, s.routinesKey(), next)
	})
	if err != nil {
		return model.Routine{}, err
	}
	return updated, nil
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// update runs fn under WATCH on key, retrying when the transaction loses a
// race with another writer.
func (s *RedisStore) update(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, fn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: %w", key, redis.TxFailedErr)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// readCollection decodes the JSON array at key and passes it through
// prepare. A missing key reads as empty.
func readCollection[T any](ctx context.Context, c getter, key string, prepare func([]T) ([]T, error)) ([]T, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	out, err = prepare(out)
	if err != nil {
		return nil, fmt.Errorf("invalid collection at %s: %w", key, err)
	}
	return out, nil
}

func writeCollection[T any](ctx context.Context, c *redis.Client, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func writeInTx[T any](ctx context.Context, tx *redis.Tx, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, raw, 0)
		return nil
	})
	return err
}
