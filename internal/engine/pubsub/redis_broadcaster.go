package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/courtside/virtual-sportsbook/pkg/contracts/events"
)

const ChannelSettlementBroadcast = "settlement_broadcast"

// RedisBroadcaster repassa liquidações pro canal pub/sub consumido por
// superfícies de tempo real (WS do simulador, dashboards).
type RedisBroadcaster struct {
	r       *redis.Client
	channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = ChannelSettlementBroadcast
	}
	return &RedisBroadcaster{r: r, channel: channel}
}

func (b *RedisBroadcaster) BroadcastWagerSettled(ctx context.Context, e events.WagerSettled) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.channel, payload).Err()
}
