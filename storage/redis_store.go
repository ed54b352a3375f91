// storage/redis_store.go
package storage

import (
	"context"
	"time"

	"github.com/chhz0/tasktrack/types"
	"github.com/go-redis/redis/v8"
)

// RedisJournal appends events to a redis list. The list expires ttl after
// the last write.
type RedisJournal struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisJournal(addr, password string, db int, prefix string, ttl time.Duration) *RedisJournal {
	return NewRedisJournalWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), prefix, ttl)
}

func NewRedisJournalWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisJournal {
	if prefix == "" {
		prefix = "tasktrack:"
	}
	return &RedisJournal{
		client: client,
		key:    prefix + "events",
		ttl:    ttl,
	}
}

func (j *RedisJournal) Append(ctx context.Context, ev *types.Event) error {
	if ev == nil {
		return ErrNilEvent
	}
	data, err := ev.Serialize()
	if err != nil {
		return err
	}

	pipe := j.client.TxPipeline()
	pipe.RPush(ctx, j.key, data)
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key, j.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (j *RedisJournal) Events(ctx context.Context, limit int) ([]*types.Event, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	items, err := j.client.LRange(ctx, j.key, 0, stop).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*types.Event, 0, len(items))
	for _, item := range items {
		ev, err := types.DeserializeEvent([]byte(item))
		if err != nil {
			continue // 跳过无效数据
		}
		events = append(events, ev)
	}
	return events, nil
}

func (j *RedisJournal) Close() error {
	return j.client.Close()
}
