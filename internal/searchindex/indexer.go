package searchindex

import (
	"auctionsearchgo/internal/events"
	"auctionsearchgo/internal/services/auction"
	"auctionsearchgo/internal/services/search"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	readCount = 100
	readBlock = 2000 * time.Millisecond
)

// AuctionSource lists auctions changed after a point in time.
type AuctionSource interface {
	ListAuctions(ctx context.Context, updatedAfter *time.Time) ([]auction.AuctionDTO, error)
}

// Indexer keeps the search projection in step with the auction store.
type Indexer struct {
	rdc    *redis.Client
	index  search.ItemIndex
	source AuctionSource
}

func New(rdc *redis.Client, index search.ItemIndex, source AuctionSource) *Indexer {
	return &Indexer{rdc: rdc, index: index, source: source}
}

// Run tails the auction event stream until ctx is done.
func (ix *Indexer) Run(ctx context.Context) {
	go func() {
		lastID := "0-0"
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			next, err := ix.consume(ctx, lastID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Warn("searchindex.xread", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			lastID = next
		}
	}()
}

// consume reads one batch after lastID, applies it and returns the id to
// continue from.
func (ix *Indexer) consume(ctx context.Context, lastID string) (string, error) {
	res, err := ix.rdc.XRead(ctx, &redis.XReadArgs{
		Streams: []string{events.Stream, lastID},
		Count:   readCount,
		Block:   readBlock,
	}).Result()
	if err != nil && err != redis.Nil {
		return lastID, err
	}
	if len(res) == 0 || len(res[0].Messages) == 0 {
		return lastID, nil
	}

	msgs := res[0].Messages
	for _, m := range msgs {
		evt, err := events.FromStream(m)
		if err != nil {
			zap.L().Warn("searchindex.decode", zap.String("entry", m.ID), zap.Error(err))
			continue
		}
		if err := ix.Apply(ctx, evt); err != nil {
			zap.L().Error("searchindex.apply",
				zap.String("entry", m.ID),
				zap.String("auction_id", evt.AuctionID),
				zap.Error(err))
		}
	}
	return msgs[len(msgs)-1].ID, nil
}

// Apply projects a single auction event onto the index.
func (ix *Indexer) Apply(ctx context.Context, evt events.Event) error {
	switch evt.Type {
	case events.Created, events.Updated:
		var dto auction.AuctionDTO
		if err := json.Unmarshal(evt.Data, &dto); err != nil {
			return fmt.Errorf("decode %s payload: %w", evt.Type, err)
		}
		return ix.index.Upsert(ctx, ToItem(dto))
	case events.Deleted:
		return ix.index.Delete(ctx, evt.AuctionID)
	default:
		return fmt.Errorf("unknown event type %q", evt.Type)
	}
}

// Resync copies every auction updated after the newest indexed row.
func (ix *Indexer) Resync(ctx context.Context) (int, error) {
	since, err := ix.index.LastUpdated(ctx)
	if err != nil {
		return 0, fmt.Errorf("last updated: %w", err)
	}
	list, err := ix.source.ListAuctions(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list auctions: %w", err)
	}
	for _, dto := range list {
		if err := ix.index.Upsert(ctx, ToItem(dto)); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", dto.ID, err)
		}
	}
	zap.L().Info("searchindex.resynced", zap.Int("auctions", len(list)))
	return len(list), nil
}

// Schedule runs Resync on the given cron spec until ctx is done.
func (ix *Indexer) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := ix.Resync(ctx); err != nil {
			zap.L().Error("searchindex.resync", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("resync schedule %q: %w", spec, err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return c, nil
}

func ToItem(dto auction.AuctionDTO) search.Item {
	return search.Item{
		ID:             dto.ID,
		ReservePrice:   dto.ReservePrice,
		Seller:         dto.Seller,
		Winner:         dto.Winner,
		SoldAmount:     dto.SoldAmount,
		CurrentHighBid: dto.CurrentHighBid,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
		AuctionEnd:     dto.AuctionEnd,
		Status:         dto.Status,
		Make:           dto.Make,
		Model:          dto.Model,
		Year:           dto.Year,
		Color:          dto.Color,
		Mileage:        dto.Mileage,
		ImageURL:       dto.ImageURL,
	}
}
