package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, reserve_price, seller, winner, sold_amount, current_high_bid,
       created_at, updated_at, auction_end, status,
       make, model, year, color, mileage, image_url`

const (
	upsertItem = `
	INSERT INTO search_items (id, reserve_price, seller, winner, sold_amount, current_high_bid,
	                          created_at, updated_at, auction_end, status,
	                          make, model, year, color, mileage, image_url)
	     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (id) DO UPDATE
	        SET reserve_price    = EXCLUDED.reserve_price,
	            seller           = EXCLUDED.seller,
	            winner           = EXCLUDED.winner,
	            sold_amount      = EXCLUDED.sold_amount,
	            current_high_bid = EXCLUDED.current_high_bid,
	            created_at       = EXCLUDED.created_at,
	            updated_at       = EXCLUDED.updated_at,
	            auction_end      = EXCLUDED.auction_end,
	            status           = EXCLUDED.status,
	            make             = EXCLUDED.make,
	            model            = EXCLUDED.model,
	            year             = EXCLUDED.year,
	            color            = EXCLUDED.color,
	            mileage          = EXCLUDED.mileage,
	            image_url        = EXCLUDED.image_url
	      WHERE search_items.updated_at <= EXCLUDED.updated_at`

	deleteItem      = `DELETE FROM search_items WHERE id = $1`
	selectMaxUpdate = `SELECT max(updated_at) FROM search_items`
)

// PgIndex stores the search projection in the search_items table and answers
// queries with Postgres full-text search.
type PgIndex struct {
	db *sql.DB
}

var _ ItemIndex = (*PgIndex)(nil)

func NewPgIndex(db *sql.DB) *PgIndex {
	return &PgIndex{db: db}
}

type queryBuilder struct {
	conditions []string
	args       []interface{}
}

// add appends arg and formats its placeholder number into cond.
func (qb *queryBuilder) add(cond string, arg interface{}) int {
	qb.args = append(qb.args, arg)
	n := len(qb.args)
	qb.conditions = append(qb.conditions, fmt.Sprintf(cond, n))
	return n
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(qb.conditions, " AND ")
}

// buildSearch turns q into a WHERE clause, an ORDER BY list and the
// positional arguments both refer to.
func buildSearch(q Query) (string, string, []interface{}) {
	qb := &queryBuilder{}

	termArg := 0
	if q.Term != "" {
		termArg = qb.add("search_vector @@ plainto_tsquery('simple', $%d)", q.Term)
	}
	if !q.EndAfter.IsZero() {
		qb.add("auction_end > $%d", q.EndAfter)
	}
	if !q.EndBefore.IsZero() {
		qb.add("auction_end < $%d", q.EndBefore)
	}
	if q.Seller != "" {
		qb.add("seller = $%d", q.Seller)
	}
	if q.Winner != "" {
		qb.add("winner = $%d", q.Winner)
	}

	var order string
	switch {
	case q.Order == OrderRelevance && termArg > 0:
		order = fmt.Sprintf("ts_rank(search_vector, plainto_tsquery('simple', $%d)) DESC, auction_end ASC, id ASC", termArg)
	case q.Order == OrderMake:
		order = "make ASC, id ASC"
	case q.Order == OrderNew:
		order = "created_at DESC, id ASC"
	default:
		order = "auction_end ASC, id ASC"
	}
	return qb.where(), order, qb.args
}

func (idx *PgIndex) Search(ctx context.Context, q Query) (*Page, error) {
	where, order, args := buildSearch(q)

	var total int64
	if err := idx.db.QueryRowContext(ctx, "SELECT count(*) FROM search_items"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count search items: %w", err)
	}
	page := &Page{
		Results:    make([]Item, 0),
		PageCount:  q.PageCount(total),
		TotalCount: total,
	}
	if total == 0 || q.PageNumber > page.PageCount {
		return page, nil
	}

	n := len(args)
	stmt := "SELECT " + itemColumns + " FROM search_items" + where +
		" ORDER BY " + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, q.PageSize, q.Offset())

	rows, err := idx.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query search items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ReservePrice, &it.Seller, &it.Winner,
			&it.SoldAmount, &it.CurrentHighBid,
			&it.CreatedAt, &it.UpdatedAt, &it.AuctionEnd, &it.Status,
			&it.Make, &it.Model, &it.Year, &it.Color, &it.Mileage, &it.ImageURL); err != nil {
			return nil, err
		}
		page.Results = append(page.Results, it)
	}
	return page, rows.Err()
}

func (idx *PgIndex) Upsert(ctx context.Context, it Item) error {
	_, err := idx.db.ExecContext(ctx, upsertItem,
		it.ID, it.ReservePrice, it.Seller, it.Winner, it.SoldAmount, it.CurrentHighBid,
		it.CreatedAt.UTC(), it.UpdatedAt.UTC(), it.AuctionEnd.UTC(), it.Status,
		it.Make, it.Model, it.Year, it.Color, it.Mileage, it.ImageURL)
	return err
}

func (idx *PgIndex) Delete(ctx context.Context, id string) error {
	_, err := idx.db.ExecContext(ctx, deleteItem, id)
	return err
}

func (idx *PgIndex) LastUpdated(ctx context.Context) (*time.Time, error) {
	var ts sql.NullTime
	if err := idx.db.QueryRowContext(ctx, selectMaxUpdate).Scan(&ts); err != nil {
		return nil, err
	}
	if !ts.Valid {
		return nil, nil
	}
	t := ts.Time.UTC()
	return &t, nil
}
