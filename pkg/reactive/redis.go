package reactive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/code-100-precent/LingRx/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// FromRedis is a source of the messages published on the given redis
// channels. Each subscription opens its own PubSub, which is closed on
// unsubscribe. The stream errors if the subscription cannot be confirmed
// and completes if redis closes the PubSub.
func FromRedis(client *redis.Client, channels []string, opts ...Option) Observable[*redis.Message] {
	cfg := newOptions(opts)
	return New(func(dst *Subscriber[*redis.Message]) TeardownFunc {
		clock := cfg.clock()
		ctx, cancel := context.WithCancel(context.Background())
		ps := client.Subscribe(ctx, channels...)

		go func() {
			if _, err := ps.Receive(ctx); err != nil {
				clock.Post(func() { dst.Error(fmt.Errorf("redis subscribe %v: %w", channels, err)) })
				return
			}
			msgs := ps.Channel()
			for {
				select {
				case msg, ok := <-msgs:
					if !ok {
						clock.Post(dst.Complete)
						return
					}
					clock.Post(func() { dst.Next(msg) })
				case <-ctx.Done():
					return
				}
			}
		}()

		return func() {
			cancel()
			if err := ps.Close(); err != nil {
				logger.Warn("redis pubsub close failed", zap.Strings("channels", channels), zap.Error(err))
			}
		}
	})
}

// RedisPayloads maps redis messages to their payloads
func RedisPayloads() Operator[*redis.Message, string] {
	return Map(func(m *redis.Message) string { return m.Payload })
}

// PublishRedis publishes every value JSON encoded on channel and forwards it
// once redis has accepted it. Publishing keeps the order of the source.
func PublishRedis[T any](client *redis.Client, channel string, opts ...Option) Operator[T, T] {
	return ConcatMap(func(v T) Observable[T] {
		return FromFunc(func(ctx context.Context) (T, error) {
			data, err := json.Marshal(v)
			if err != nil {
				return v, err
			}
			return v, client.Publish(ctx, channel, data).Err()
		}, opts...)
	})
}
