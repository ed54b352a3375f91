package transport

import (
	"context"
	"fmt"

	"github.com/chhz0/tasktrack/types"
	"github.com/go-redis/redis/v8"
)

// Transport broadcasts task events to whoever is listening.
type Transport interface {
	Publish(ctx context.Context, ev *types.Event) error
	Subscribe(ctx context.Context) (<-chan *types.Event, error)
	Close() error
}

// EventChannel is the pub/sub channel name, before the key prefix.
const EventChannel = "task_events"

// RedisPubSub 实现
type RedisPubSub struct {
	client  *redis.Client
	channel string
}

func NewRedisTransport(ctx context.Context, addr, password string, db int, prefix string) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 验证连接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return newRedisPubSub(client, prefix), nil
}

func newRedisPubSub(client *redis.Client, prefix string) *RedisPubSub {
	if prefix == "" {
		prefix = "tasktrack:"
	}
	return &RedisPubSub{
		client:  client,
		channel: prefix + EventChannel,
	}
}

func (rs *RedisPubSub) Channel() string { return rs.channel }

func (rs *RedisPubSub) Publish(ctx context.Context, ev *types.Event) error {
	data, err := ev.Serialize()
	if err != nil {
		return err
	}
	return rs.client.Publish(ctx, rs.channel, data).Err()
}

// Subscribe streams events until ctx is done. Malformed payloads are dropped.
func (rs *RedisPubSub) Subscribe(ctx context.Context) (<-chan *types.Event, error) {
	pubsub := rs.client.Subscribe(ctx, rs.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", rs.channel, err)
	}

	ch := make(chan *types.Event, 100)
	go func() {
		defer close(ch)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				ev, err := types.DeserializeEvent([]byte(msg.Payload))
				if err != nil {
					continue
				}
				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (rs *RedisPubSub) Close() error {
	return rs.client.Close()
}
