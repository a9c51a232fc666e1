package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Stream is the Redis stream every auction change is appended to. The search
// indexer tails it.
const Stream = "auction_events"

type Type string

const (
	Created Type = "created"
	Updated Type = "updated"
	Deleted Type = "deleted"
)

// Event is a single auction change. Data carries the auction snapshot for
// created and updated events and is empty for deletions.
type Event struct {
	Type      Type            `json:"event"`
	AuctionID string          `json:"auction_id"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Channel is the pub/sub channel live listeners of one auction subscribe to.
func Channel(auctionID string) string {
	return "auc:" + auctionID + ":events"
}

type IPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

type Publisher struct {
	rdc    *redis.Client
	maxLen int64
}

var _ IPublisher = (*Publisher)(nil)

func NewPublisher(rdc *redis.Client, maxLen int64) *Publisher {
	return &Publisher{rdc: rdc, maxLen: maxLen}
}

// Publish appends evt to the stream and announces it on the auction channel
// inside one MULTI/EXEC so both consumers observe the same set of events.
func (p *Publisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := p.rdc.TxPipeline()
	pipe.XAdd(ctx, StreamArgs(evt, p.maxLen))
	pipe.Publish(ctx, Channel(evt.AuctionID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s %s: %w", evt.Type, evt.AuctionID, err)
	}
	return nil
}

// StreamArgs builds the XADD arguments for evt. Values is a flat slice so the
// field order on the wire is stable.
func StreamArgs(evt Event, maxLen int64) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: Stream,
		MaxLen: maxLen,
		Approx: true,
		Values: []interface{}{
			"event", string(evt.Type),
			"aid", evt.AuctionID,
			"data", string(evt.Data),
		},
	}
}

// FromStream decodes an entry written by Publish.
func FromStream(msg redis.XMessage) (Event, error) {
	typ, _ := msg.Values["event"].(string)
	aid, _ := msg.Values["aid"].(string)
	if typ == "" || aid == "" {
		return Event{}, fmt.Errorf("stream entry %s: missing event or aid", msg.ID)
	}
	evt := Event{Type: Type(typ), AuctionID: aid}
	if data, _ := msg.Values["data"].(string); data != "" {
		evt.Data = json.RawMessage(data)
	}
	return evt, nil
}
