package auction

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusLive          Status = "Live"
	StatusFinished      Status = "Finished"
	StatusReserveNotMet Status = "ReserveNotMet"
)

// Auction owns exactly one Item; both rows are created and removed together.
type Auction struct {
	ID             uuid.UUID
	ReservePrice   int
	Seller         string
	Winner         string
	SoldAmount     int
	CurrentHighBid int
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AuctionEnd     time.Time
	Status         Status
	Item           Item
}

type Item struct {
	Make     string
	Model    string
	Year     int
	Color    string
	Mileage  int
	ImageURL string
}

type AuctionDTO struct {
	ID             string    `json:"id"`
	ReservePrice   int       `json:"reservePrice"`
	Seller         string    `json:"seller"`
	Winner         string    `json:"winner,omitempty"`
	SoldAmount     int       `json:"soldAmount"`
	CurrentHighBid int       `json:"currentHighBid"`
	CreatedAt      time.Time `json:"createdAt"  example:"2025-07-27T16:05:05Z"`
	UpdatedAt      time.Time `json:"updatedAt"  example:"2025-07-27T16:05:05Z"`
	AuctionEnd     time.Time `json:"auctionEnd" example:"2025-08-27T16:05:05Z"`
	Status         string    `json:"status"     example:"Live"`
	Make           string    `json:"make"       example:"Ford"`
	Model          string    `json:"model"      example:"GT"`
	Year           int       `json:"year"       example:"2020"`
	Color          string    `json:"color"      example:"White"`
	Mileage        int       `json:"mileage"    example:"50000"`
	ImageURL       string    `json:"imageUrl"`
} // @name Auction

type CreateAuctionDTO struct {
	Make         string
	Model        string
	Year         int
	Color        string
	Mileage      int
	ImageURL     string
	ReservePrice int
	AuctionEnd   time.Time
}

// UpdateAuctionDTO is a sparse patch: nil fields keep their stored value.
type UpdateAuctionDTO struct {
	Make    *string
	Model   *string
	Color   *string
	Mileage *int
	Year    *int
}

func (a *Auction) ToDTO() AuctionDTO {
	return AuctionDTO{
		ID:             a.ID.String(),
		ReservePrice:   a.ReservePrice,
		Seller:         a.Seller,
		Winner:         a.Winner,
		SoldAmount:     a.SoldAmount,
		CurrentHighBid: a.CurrentHighBid,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		AuctionEnd:     a.AuctionEnd,
		Status:         string(a.Status),
		Make:           a.Item.Make,
		Model:          a.Item.Model,
		Year:           a.Item.Year,
		Color:          a.Item.Color,
		Mileage:        a.Item.Mileage,
		ImageURL:       a.Item.ImageURL,
	}
}

// ApplyUpdate merges the non-nil fields of upd into item.
func ApplyUpdate(item *Item, upd UpdateAuctionDTO) {
	if upd.Make != nil {
		item.Make = *upd.Make
	}
	if upd.Model != nil {
		item.Model = *upd.Model
	}
	if upd.Color != nil {
		item.Color = *upd.Color
	}
	if upd.Mileage != nil {
		item.Mileage = *upd.Mileage
	}
	if upd.Year != nil {
		item.Year = *upd.Year
	}
}
