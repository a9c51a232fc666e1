package auctionhandler

import (
	"auctionsearchgo/internal/http/identity"
	"auctionsearchgo/internal/services/auction"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	svc auction.IAuctionService
}

func New(svc auction.IAuctionService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/auctions")
	g.GET("", h.list)
	g.GET("/:id", h.info)
	g.POST("", identity.Require(), h.create)
	g.PUT("/:id", identity.Require(), h.update)
	g.DELETE("/:id", identity.Require(), h.delete)
}

// @Summary		Get auction details
// @Description	Returns a single auction with its item.
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID (uuid)"
// @Success		200	{object}	auction.AuctionDTO
// @Failure		400	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/api/auctions/{id} [get]
func (h *Handler) info(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dto, err := h.svc.GetAuction(c.Request.Context(), id)
	if err != nil {
		writeError(c, "auction_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

// @Summary		List auctions
// @Description	Lists every auction ordered by item make. With date only auctions updated after it are returned.
// @Tags			Auctions
// @Param			date	query		string	false	"RFC3339 timestamp"
// @Success		200		{array}		auction.AuctionDTO
// @Failure		400		{object}	ErrorResponse
// @Failure		500		{object}	ErrorResponse
// @Router			/api/auctions [get]
func (h *Handler) list(c *gin.Context) {
	var q ListAuctionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	var updatedAfter *time.Time
	if q.Date != "" {
		t, err := time.Parse(time.RFC3339, q.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be RFC3339"})
			return
		}
		updatedAfter = &t
	}
	out, err := h.svc.ListAuctions(c.Request.Context(), updatedAfter)
	if err != nil {
		writeError(c, "auction_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// @Summary		Create an auction
// @Description	The authenticated caller becomes the seller.
// @Tags			Auctions
// @Security		BearerAuth
// @Param			body	body		CreateAuctionBody	true	"Auction payload"
// @Success		201		{object}	auction.AuctionDTO
// @Header			201		{string}	Location	"URL of the new auction"
// @Failure		400		{object}	ErrorResponse
// @Failure		401		{object}	ErrorResponse
// @Router			/api/auctions [post]
func (h *Handler) create(ginCtx *gin.Context) {
	var body CreateAuctionBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	if !body.AuctionEnd.After(time.Now()) {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: "auctionEnd must be in the future"})
		return
	}
	seller, _ := identity.User(ginCtx)

	dto, err := h.svc.CreateAuction(ginCtx.Request.Context(), seller, auction.CreateAuctionDTO{
		Make:         body.Make,
		Model:        body.Model,
		Year:         body.Year,
		Color:        body.Color,
		Mileage:      body.Mileage,
		ImageURL:     body.ImageURL,
		ReservePrice: body.ReservePrice,
		AuctionEnd:   body.AuctionEnd,
	})
	if err != nil {
		writeError(ginCtx, "auction_create_failed", err)
		return
	}
	ginCtx.Header("Location", ginCtx.Request.URL.Path+"/"+dto.ID)
	ginCtx.JSON(http.StatusCreated, dto)
}

// @Summary		Update an auction
// @Description	Applies the provided item fields; omitted fields are left unchanged.
// @Tags			Auctions
// @Security		BearerAuth
// @Param			id		path	string				true	"Auction ID (uuid)"
// @Param			body	body	UpdateAuctionBody	true	"Partial item payload"
// @Success		200
// @Failure		400	{object}	ErrorResponse
// @Failure		401	{object}	ErrorResponse
// @Failure		403	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/api/auctions/{id} [put]
func (h *Handler) update(ginCtx *gin.Context) {
	id, ok := parseID(ginCtx)
	if !ok {
		return
	}
	var body UpdateAuctionBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	seller, _ := identity.User(ginCtx)

	err := h.svc.UpdateAuction(ginCtx.Request.Context(), seller, id, auction.UpdateAuctionDTO{
		Make:    body.Make,
		Model:   body.Model,
		Color:   body.Color,
		Mileage: body.Mileage,
		Year:    body.Year,
	})
	if err != nil {
		writeError(ginCtx, "auction_update_failed", err)
		return
	}
	ginCtx.Status(http.StatusOK)
}

// @Summary		Delete an auction
// @Description	Removes the auction and its item.
// @Tags			Auctions
// @Security		BearerAuth
// @Param			id	path	string	true	"Auction ID (uuid)"
// @Success		200
// @Failure		400	{object}	ErrorResponse
// @Failure		401	{object}	ErrorResponse
// @Failure		403	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/api/auctions/{id} [delete]
func (h *Handler) delete(ginCtx *gin.Context) {
	id, ok := parseID(ginCtx)
	if !ok {
		return
	}
	seller, _ := identity.User(ginCtx)

	if err := h.svc.DeleteAuction(ginCtx.Request.Context(), seller, id); err != nil {
		writeError(ginCtx, "auction_delete_failed", err)
		return
	}
	ginCtx.Status(http.StatusOK)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "id must be a uuid"})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func writeError(c *gin.Context, event string, err error) {
	switch {
	case errors.Is(err, auction.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: auction.ErrNotFound.Error()})
	case errors.Is(err, auction.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: auction.ErrForbidden.Error()})
	case errors.Is(err, auction.ErrCouldNotSave):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: auction.ErrCouldNotSave.Error()})
	default:
		zap.L().Error(event, zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
