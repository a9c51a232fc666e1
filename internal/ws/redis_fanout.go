package ws

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SubscribeRedisAuctionEvents fans-out auction events published by any
// instance to the in-process Hub. It blocks until ctx is done.
func SubscribeRedisAuctionEvents(ctx context.Context, rdb *redis.Client, hub *Hub) {
	pubsub := rdb.PSubscribe(ctx, "auc:*:events")
	defer pubsub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			hub.dispatch(m.Channel, m.Payload)
		}
	}
}

// dispatch delivers one "auc:<auctionID>:events" message to the auction's
// room and to the AllAuctions room.
func (h *Hub) dispatch(channel, payload string) {
	parts := strings.Split(channel, ":")
	if len(parts) != 3 || parts[1] == "" {
		return
	}
	wrapped, err := wrapRedisEvent(payload)
	if err != nil {
		zap.L().Warn("ws.wrap_event_failed", zap.Error(err))
		wrapped = []byte(payload)
	}
	h.Broadcast(parts[1], wrapped)
	h.Broadcast(AllAuctions, wrapped)
}
