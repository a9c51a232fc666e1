package search

import (
	"context"
	"time"
)

// Item is the denormalised search projection of an auction.
type Item struct {
	ID             string    `json:"id"`
	ReservePrice   int       `json:"reservePrice"`
	Seller         string    `json:"seller"`
	Winner         string    `json:"winner,omitempty"`
	SoldAmount     int       `json:"soldAmount"`
	CurrentHighBid int       `json:"currentHighBid"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	AuctionEnd     time.Time `json:"auctionEnd"`
	Status         string    `json:"status"`
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	Color          string    `json:"color"`
	Mileage        int       `json:"mileage"`
	ImageURL       string    `json:"imageUrl"`
} // @name SearchItem

type Page struct {
	Results    []Item `json:"results"`
	PageCount  int    `json:"pageCount"`
	TotalCount int64  `json:"totalCount"`
} // @name SearchPage

type ItemIndex interface {
	Search(ctx context.Context, q Query) (*Page, error)
	// Upsert keeps the stored row when it is newer than item.
	Upsert(ctx context.Context, item Item) error
	Delete(ctx context.Context, id string) error
	// LastUpdated returns the newest updated_at in the index, nil when empty.
	LastUpdated(ctx context.Context) (*time.Time, error)
}
