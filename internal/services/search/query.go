package search

import (
	"math"
	"time"
)

// EndingSoonWindow bounds the "endingSoon" filter.
const EndingSoonWindow = 6 * time.Hour

type OrderBy int

const (
	OrderAuctionEnd OrderBy = iota
	OrderMake
	OrderNew
	OrderRelevance
)

// ParseOrderBy maps the orderBy request value; anything unknown sorts by
// auction end.
func ParseOrderBy(s string) OrderBy {
	switch s {
	case "make":
		return OrderMake
	case "new":
		return OrderNew
	default:
		return OrderAuctionEnd
	}
}

func (o OrderBy) String() string {
	switch o {
	case OrderMake:
		return "make"
	case OrderNew:
		return "new"
	case OrderRelevance:
		return "relevance"
	default:
		return "auctionEnd"
	}
}

type FilterBy int

const (
	FilterActive FilterBy = iota
	FilterFinished
	FilterEndingSoon
)

// ParseFilterBy maps the filterBy request value; anything unknown keeps only
// auctions that have not ended.
func ParseFilterBy(s string) FilterBy {
	switch s {
	case "finished":
		return FilterFinished
	case "endingSoon":
		return FilterEndingSoon
	default:
		return FilterActive
	}
}

func (f FilterBy) String() string {
	switch f {
	case FilterFinished:
		return "finished"
	case FilterEndingSoon:
		return "endingSoon"
	default:
		return "active"
	}
}

// Params are the raw search request values.
type Params struct {
	SearchTerm string
	OrderBy    string
	FilterBy   string
	Seller     string
	Winner     string
	PageNumber int
	PageSize   int
}

type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Query is the resolved search specification handed to an ItemIndex. Every
// field is already decided: sort precedence, concrete time bounds and paging.
type Query struct {
	Term   string
	Order  OrderBy
	Filter FilterBy

	// Exclusive bounds on auction end; a zero value means unbounded.
	EndAfter  time.Time
	EndBefore time.Time

	Seller string
	Winner string

	PageNumber int
	PageSize   int
}

// NewQuery resolves p against the clock and the paging limits.
//
// An explicit orderBy of make or new wins over relevance; relevance applies
// only when a term is given and no explicit order was requested.
func NewQuery(p Params, now time.Time, lim Limits) Query {
	q := Query{
		Term:   p.SearchTerm,
		Order:  ParseOrderBy(p.OrderBy),
		Filter: ParseFilterBy(p.FilterBy),
		Seller: p.Seller,
		Winner: p.Winner,
	}
	if q.Term != "" && q.Order == OrderAuctionEnd {
		q.Order = OrderRelevance
	}

	now = now.UTC()
	switch q.Filter {
	case FilterFinished:
		q.EndBefore = now
	case FilterEndingSoon:
		q.EndAfter = now
		q.EndBefore = now.Add(EndingSoonWindow)
	default:
		q.EndAfter = now
	}

	q.PageNumber = p.PageNumber
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	q.PageSize = p.PageSize
	if q.PageSize < 1 {
		q.PageSize = lim.DefaultPageSize
	}
	if lim.MaxPageSize > 0 && q.PageSize > lim.MaxPageSize {
		q.PageSize = lim.MaxPageSize
	}
	// keeps Offset within int
	if q.PageSize > 0 && q.PageNumber > math.MaxInt/q.PageSize {
		q.PageNumber = math.MaxInt / q.PageSize
	}
	return q
}

func (q Query) Offset() int {
	return (q.PageNumber - 1) * q.PageSize
}

// PageCount is the number of pages needed for total hits.
func (q Query) PageCount(total int64) int {
	if total <= 0 || q.PageSize <= 0 {
		return 0
	}
	return int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
}
