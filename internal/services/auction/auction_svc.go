package auction

import (
	"auctionsearchgo/internal/events"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound     = errors.New("auction not found")
	ErrCouldNotSave = errors.New("could not save changes to DB")
	ErrForbidden    = errors.New("only the seller may modify this auction")
)

type IAuctionService interface {
	GetAuction(ctx context.Context, id uuid.UUID) (*AuctionDTO, error)
	ListAuctions(ctx context.Context, updatedAfter *time.Time) ([]AuctionDTO, error)
	CreateAuction(ctx context.Context, seller string, in CreateAuctionDTO) (*AuctionDTO, error)
	UpdateAuction(ctx context.Context, seller string, id uuid.UUID, upd UpdateAuctionDTO) error
	DeleteAuction(ctx context.Context, seller string, id uuid.UUID) error
}

type auctionService struct {
	db  *sql.DB
	pub events.IPublisher
	now func() time.Time
}

var _ IAuctionService = (*auctionService)(nil)

func NewAuctionService(db *sql.DB, pub events.IPublisher) IAuctionService {
	return &auctionService{
		db:  db,
		pub: pub,
		now: time.Now,
	}
}

const (
	selectAuction = `SELECT a.id, a.reserve_price, a.seller, coalesce(a.winner,''),
                        coalesce(a.sold_amount,0), coalesce(a.current_high_bid,0),
                        a.created_at, a.updated_at, a.auction_end, a.status,
                        i.make, i.model, i.year, i.color, i.mileage, i.image_url
                   FROM auctions a
                   JOIN items i ON i.auction_id = a.id`

	selectAuctionByID          = selectAuction + ` WHERE a.id = $1`
	selectAuctionForUpdate     = selectAuctionByID + ` FOR UPDATE OF a`
	selectAuctionsOrdered      = selectAuction + ` ORDER BY i.make ASC, a.id ASC`
	selectAuctionsUpdatedAfter = selectAuction + ` WHERE a.updated_at > $1 ORDER BY i.make ASC, a.id ASC`

	insertAuction = `INSERT INTO auctions (id, reserve_price, seller, created_at,
                                           updated_at, auction_end, status)
                          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	insertItem = `INSERT INTO items (id, auction_id, make, model, year, color, mileage, image_url)
                       VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	updateItem = `UPDATE items
                     SET make = $1, model = $2, color = $3, mileage = $4, year = $5
                   WHERE auction_id = $6`
	touchAuction = `UPDATE auctions SET updated_at = $1 WHERE id = $2`

	selectSellerForUpdate = `SELECT seller FROM auctions WHERE id = $1 FOR UPDATE`
	deleteAuction         = `DELETE FROM auctions WHERE id = $1`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanAuction(row scanner) (*Auction, error) {
	a := &Auction{}
	var status string
	err := row.Scan(&a.ID, &a.ReservePrice, &a.Seller, &a.Winner,
		&a.SoldAmount, &a.CurrentHighBid,
		&a.CreatedAt, &a.UpdatedAt, &a.AuctionEnd, &status,
		&a.Item.Make, &a.Item.Model, &a.Item.Year, &a.Item.Color, &a.Item.Mileage, &a.Item.ImageURL)
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return a, nil
}

func (svc *auctionService) GetAuction(ctx context.Context, id uuid.UUID) (*AuctionDTO, error) {
	a, err := scanAuction(svc.db.QueryRowContext(ctx, selectAuctionByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("auction %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	dto := a.ToDTO()
	return &dto, nil
}

// ListAuctions returns every auction ordered by item make. A non-nil
// updatedAfter restricts the result to auctions changed after that instant.
func (svc *auctionService) ListAuctions(ctx context.Context, updatedAfter *time.Time) ([]AuctionDTO, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if updatedAfter != nil {
		rows, err = svc.db.QueryContext(ctx, selectAuctionsUpdatedAfter, updatedAfter.UTC())
	} else {
		rows, err = svc.db.QueryContext(ctx, selectAuctionsOrdered)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]AuctionDTO, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a.ToDTO())
	}
	return list, rows.Err()
}

func (svc *auctionService) CreateAuction(ctx context.Context, seller string, in CreateAuctionDTO) (*AuctionDTO, error) {
	now := storedTime(svc.now())
	a := &Auction{
		ID:           uuid.New(),
		ReservePrice: in.ReservePrice,
		Seller:       seller,
		CreatedAt:    now,
		UpdatedAt:    now,
		AuctionEnd:   storedTime(in.AuctionEnd),
		Status:       StatusLive,
		Item: Item{
			Make:     in.Make,
			Model:    in.Model,
			Year:     in.Year,
			Color:    in.Color,
			Mileage:  in.Mileage,
			ImageURL: in.ImageURL,
		},
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertAuction,
		a.ID, a.ReservePrice, a.Seller, a.CreatedAt, a.UpdatedAt, a.AuctionEnd, string(a.Status))
	if err = checkSaved(res, err); err != nil {
		return nil, fmt.Errorf("insert auction: %w", err)
	}
	res, err = tx.ExecContext(ctx, insertItem,
		uuid.New(), a.ID, a.Item.Make, a.Item.Model, a.Item.Year, a.Item.Color, a.Item.Mileage, a.Item.ImageURL)
	if err = checkSaved(res, err); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	dto := a.ToDTO()
	svc.publish(ctx, events.Created, dto.ID, &dto)
	return &dto, nil
}

func (svc *auctionService) UpdateAuction(ctx context.Context, seller string, id uuid.UUID, upd UpdateAuctionDTO) error {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	a, err := scanAuction(tx.QueryRowContext(ctx, selectAuctionForUpdate, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("auction %s: %w", id, ErrNotFound)
		}
		return err
	}
	if a.Seller != seller {
		return ErrForbidden
	}

	ApplyUpdate(&a.Item, upd)
	a.UpdatedAt = storedTime(svc.now())

	res, err := tx.ExecContext(ctx, updateItem,
		a.Item.Make, a.Item.Model, a.Item.Color, a.Item.Mileage, a.Item.Year, a.ID)
	if err = checkSaved(res, err); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	res, err = tx.ExecContext(ctx, touchAuction, a.UpdatedAt, a.ID)
	if err = checkSaved(res, err); err != nil {
		return fmt.Errorf("update auction: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	dto := a.ToDTO()
	svc.publish(ctx, events.Updated, dto.ID, &dto)
	return nil
}

func (svc *auctionService) DeleteAuction(ctx context.Context, seller string, id uuid.UUID) error {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owner string
	if err := tx.QueryRowContext(ctx, selectSellerForUpdate, id).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("auction %s: %w", id, ErrNotFound)
		}
		return err
	}
	if owner != seller {
		return ErrForbidden
	}

	// items row goes with it through ON DELETE CASCADE
	res, err := tx.ExecContext(ctx, deleteAuction, id)
	if err = checkSaved(res, err); err != nil {
		return fmt.Errorf("delete auction: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	svc.publish(ctx, events.Deleted, id.String(), nil)
	return nil
}

// checkSaved turns a zero rows-affected outcome into ErrCouldNotSave.
// storedTime rounds t to what a timestamptz column keeps, so the values
// returned after a write match a later read.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func checkSaved(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n <= 0 {
		return ErrCouldNotSave
	}
	return nil
}

// publish runs after commit and never fails the caller.
func (svc *auctionService) publish(ctx context.Context, typ events.Type, id string, dto *AuctionDTO) {
	evt := events.Event{Type: typ, AuctionID: id}
	if dto != nil {
		data, err := json.Marshal(dto)
		if err != nil {
			zap.L().Error("auction_event_marshal", zap.String("id", id), zap.Error(err))
			return
		}
		evt.Data = data
	}
	if err := svc.pub.Publish(ctx, evt); err != nil {
		zap.L().Warn("auction_event_publish", zap.String("id", id), zap.String("event", string(typ)), zap.Error(err))
	}
}
