package searchhandler

import (
	"auctionsearchgo/internal/services/search"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc search.ISearchService
}

func New(svc search.ISearchService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/search", h.search)
}

// @Summary		Search auction items
// @Description	Full-text, filtered, sorted and paged search over the item index.
// @Tags			Search
// @Param			searchTerm	query		string	false	"Full-text term (make, model, color)"
// @Param			orderBy		query		string	false	"Sort order"		Enums(make,new)
// @Param			filterBy	query		string	false	"Time filter"		Enums(finished,endingSoon)
// @Param			seller		query		string	false	"Exact seller"
// @Param			winner		query		string	false	"Exact winner"
// @Param			pageNumber	query		int		false	"1-based page"		minimum(1)	default(1)
// @Param			pageSize	query		int		false	"Results per page"	minimum(1)
// @Success		200			{object}	search.Page
// @Failure		400			{object}	ErrorResponse
// @Failure		500			{object}	ErrorResponse
// @Router			/api/search [get]
func (h *Handler) search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	page, err := h.svc.Search(c.Request.Context(), search.Params{
		SearchTerm: q.SearchTerm,
		OrderBy:    q.OrderBy,
		FilterBy:   q.FilterBy,
		Seller:     q.Seller,
		Winner:     q.Winner,
		PageNumber: q.PageNumber,
		PageSize:   q.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "search failed"})
		return
	}
	c.JSON(http.StatusOK, page)
}
