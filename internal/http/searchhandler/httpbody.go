package searchhandler

type SearchQuery struct {
	SearchTerm string `form:"searchTerm"`
	OrderBy    string `form:"orderBy"`
	FilterBy   string `form:"filterBy"`
	Seller     string `form:"seller"`
	Winner     string `form:"winner"`
	PageNumber int    `form:"pageNumber,default=1" binding:"gte=0"`
	PageSize   int    `form:"pageSize"             binding:"gte=0"`
} // @name SearchQuery

type ErrorResponse struct {
	Error string `json:"error"`
} // @name SearchErrorResponse
