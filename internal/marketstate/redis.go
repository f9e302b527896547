package marketstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"kalshitrader/pkg/logger"
)

// RedisStore 多实例共享的存储：最新状态写入 key，变更通过 pub/sub 广播
type RedisStore struct {
	client  *redis.Client
	key     string
	channel string
	now     func() time.Time
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{
		client:  client,
		key:     key,
		channel: key + ":updates",
		now:     time.Now,
	}
}

func (r *RedisStore) Publish(ctx context.Context, o Observation) error {
	data, err := json.Marshal(o.snapshot(r.now()))
	if err != nil {
		return fmt.Errorf("marshal market state: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key, data, 0)
		pipe.Publish(ctx, r.channel, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish market state to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Latest(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("load market state from redis: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode market state: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Subscribe(ctx context.Context) (<-chan Snapshot, error) {
	ps := r.client.Subscribe(ctx, r.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	out := make(chan Snapshot, subscriberBuffer)
	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var s Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
					logger.Warn("drop malformed market state message", logger.Err(err))
					continue
				}
				select {
				case out <- s:
				default:
				}
			}
		}
	}()
	return out, nil
}
