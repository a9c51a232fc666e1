package auctionhandler

import "time"

type CreateAuctionBody struct {
	Make         string    `json:"make"         binding:"required"                 example:"Ford"`
	Model        string    `json:"model"        binding:"required"                 example:"GT"`
	Color        string    `json:"color"        binding:"required"                 example:"White"`
	Mileage      int       `json:"mileage"      binding:"gte=0"                    example:"50000"`
	Year         int       `json:"year"         binding:"required,gte=1886,lte=2100" example:"2020"`
	ImageURL     string    `json:"imageUrl"     binding:"omitempty,url"`
	ReservePrice int       `json:"reservePrice" binding:"gte=0"                    example:"20000"`
	AuctionEnd   time.Time `json:"auctionEnd"   binding:"required"                 example:"2025-08-27T16:05:05Z"`
} // @name CreateAuctionRequest

// UpdateAuctionBody fields are optional; omitted fields keep their value.
type UpdateAuctionBody struct {
	Make    *string `json:"make"    binding:"omitempty,min=1"             example:"Ford"`
	Model   *string `json:"model"   binding:"omitempty,min=1"             example:"Mustang"`
	Color   *string `json:"color"   binding:"omitempty,min=1"             example:"Red"`
	Mileage *int    `json:"mileage" binding:"omitempty,gte=0"             example:"61000"`
	Year    *int    `json:"year"    binding:"omitempty,gte=1886,lte=2100" example:"2021"`
} // @name UpdateAuctionRequest

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

type ListAuctionsQuery struct {
	Date string `form:"date"`
} // @name ListAuctionsQuery
