package search

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ISearchService interface {
	Search(ctx context.Context, p Params) (*Page, error)
}

type searchService struct {
	index  ItemIndex
	limits Limits
	now    func() time.Time
}

var _ ISearchService = (*searchService)(nil)

func NewSearchService(index ItemIndex, limits Limits) ISearchService {
	return &searchService{
		index:  index,
		limits: limits,
		now:    time.Now,
	}
}

func (svc *searchService) Search(ctx context.Context, p Params) (*Page, error) {
	q := NewQuery(p, svc.now(), svc.limits)
	zap.L().Debug("search",
		zap.String("term", q.Term),
		zap.Stringer("order", q.Order),
		zap.Stringer("filter", q.Filter),
		zap.String("seller", q.Seller),
		zap.String("winner", q.Winner),
		zap.Int("page", q.PageNumber),
		zap.Int("page_size", q.PageSize),
	)

	page, err := svc.index.Search(ctx, q)
	if err != nil {
		zap.L().Error("search_failed", zap.Error(err))
		return nil, err
	}
	return page, nil
}
