package repository

import (
	"context"
	"encoding/json"

	"websocket_relay_service/internal/relay/domain"
	"websocket_relay_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultRelayChannel envelope channel shared by all relay instances
const DefaultRelayChannel = "relay:events"

// RelayPubSub redis-backed fan-out bridge. When enabled every fan-out is
// published here and delivered by each instance's subscriber, so clients of
// other instances see the same events. Best effort only, like the rest of
// the fan-out path.
type RelayPubSub struct {
	client  *redis.Client
	channel string
}

// NewRelayPubSub create RelayPubSub, empty channel falls back to the default
func NewRelayPubSub(client *redis.Client, channel string) *RelayPubSub {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &RelayPubSub{
		client:  client,
		channel: channel,
	}
}

// Publish 將 envelope 序列化後發布到共用 channel
func (r *RelayPubSub) Publish(ctx context.Context, env domain.RelayEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Subscribe 訂閱共用 channel，收到 envelope 後呼叫 handler 處理
func (r *RelayPubSub) Subscribe(ctx context.Context, handler func(env domain.RelayEnvelope)) {
	sub := r.client.Subscribe(ctx, r.channel)
	go func() {
		defer sub.Close()
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var env domain.RelayEnvelope
				if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
					logger.Log.Error("relay pubsub unmarshal err", zap.String("err", err.Error()))
					continue
				}
				handler(env)

			case <-ctx.Done():
				return
			}
		}
	}()
}
