package auctionhandler

import (
	"auctionsearchgo/internal/http/identity"
	"auctionsearchgo/internal/services/auction"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

// memService is an in-memory IAuctionService honouring the same error
// contract as the SQL implementation.
type memService struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*auction.Auction
	saveErr  error
}

func newMemService() *memService {
	return &memService{auctions: map[uuid.UUID]*auction.Auction{}}
}

func (m *memService) GetAuction(_ context.Context, id uuid.UUID) (*auction.AuctionDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[id]
	if !ok {
		return nil, auction.ErrNotFound
	}
	dto := a.ToDTO()
	return &dto, nil
}

func (m *memService) ListAuctions(_ context.Context, updatedAfter *time.Time) ([]auction.AuctionDTO, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]auction.AuctionDTO, 0, len(m.auctions))
	for _, a := range m.auctions {
		if updatedAfter != nil && !a.UpdatedAt.After(*updatedAfter) {
			continue
		}
		out = append(out, a.ToDTO())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Make < out[j].Make })
	return out, nil
}

func (m *memService) CreateAuction(_ context.Context, seller string, in auction.CreateAuctionDTO) (*auction.AuctionDTO, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	a := &auction.Auction{
		ID: uuid.New(), Seller: seller, ReservePrice: in.ReservePrice,
		CreatedAt: now, UpdatedAt: now, AuctionEnd: in.AuctionEnd.UTC(), Status: auction.StatusLive,
		Item: auction.Item{Make: in.Make, Model: in.Model, Year: in.Year, Color: in.Color, Mileage: in.Mileage, ImageURL: in.ImageURL},
	}
	m.auctions[a.ID] = a
	dto := a.ToDTO()
	return &dto, nil
}

func (m *memService) UpdateAuction(_ context.Context, seller string, id uuid.UUID, upd auction.UpdateAuctionDTO) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[id]
	if !ok {
		return auction.ErrNotFound
	}
	if a.Seller != seller {
		return auction.ErrForbidden
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	auction.ApplyUpdate(&a.Item, upd)
	return nil
}

func (m *memService) DeleteAuction(_ context.Context, seller string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.auctions[id]
	if !ok {
		return auction.ErrNotFound
	}
	if a.Seller != seller {
		return auction.ErrForbidden
	}
	delete(m.auctions, id)
	return nil
}

func token(t *testing.T, user string) string {
	t.Helper()
	tok, err := jwt.NewBuilder().Subject(user).Expiration(time.Now().Add(time.Hour)).Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), []byte(secret)))
	require.NoError(t, err)
	return "Bearer " + string(signed)
}

func newRouter(svc auction.IAuctionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(identity.NewVerifier(secret).Middleware())
	New(svc).Register(r.Group("/api"))
	return r
}

func do(r http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBody(mk string) string {
	end := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	return fmt.Sprintf(`{"make":%q,"model":"GT","color":"White","mileage":50000,"year":2020,"reservePrice":20000,"auctionEnd":%q}`, mk, end)
}

func create(t *testing.T, r http.Handler, auth, mk string) auction.AuctionDTO {
	t.Helper()
	w := do(r, http.MethodPost, "/api/auctions", auth, createBody(mk))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dto auction.AuctionDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
	return dto
}

func TestCreateThenGet(t *testing.T) {
	r := newRouter(newMemService())
	alice := token(t, "alice")

	w := do(r, http.MethodPost, "/api/auctions", alice, createBody("Ford"))
	require.Equal(t, http.StatusCreated, w.Code)
	var created auction.AuctionDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.Seller)
	assert.Equal(t, "/api/auctions/"+created.ID, w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/api/auctions/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got auction.AuctionDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Ford", got.Make)
	assert.Equal(t, "GT", got.Model)
	assert.Equal(t, 50000, got.Mileage)
	assert.Equal(t, 20000, got.ReservePrice)
}

func TestCreateValidation(t *testing.T) {
	r := newRouter(newMemService())
	alice := token(t, "alice")

	w := do(r, http.MethodPost, "/api/auctions", "", createBody("Ford"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/auctions", alice, `{"make":"Ford"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	w = do(r, http.MethodPost, "/api/auctions", alice,
		fmt.Sprintf(`{"make":"Ford","model":"GT","color":"White","mileage":1,"year":2020,"auctionEnd":%q}`, past))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCouldNotSave(t *testing.T) {
	svc := newMemService()
	svc.saveErr = fmt.Errorf("insert auction: %w", auction.ErrCouldNotSave)
	r := newRouter(svc)

	w := do(r, http.MethodPost, "/api/auctions", token(t, "alice"), createBody("Ford"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "could not save")
}

func TestGetNotFoundAndBadID(t *testing.T) {
	r := newRouter(newMemService())

	w := do(r, http.MethodGet, "/api/auctions/"+uuid.NewString(), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/auctions/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSortedByMake(t *testing.T) {
	r := newRouter(newMemService())
	alice := token(t, "alice")
	for _, mk := range []string{"Ford", "Audi", "Mercedes", "Bugatti"} {
		create(t, r, alice, mk)
	}

	w := do(r, http.MethodGet, "/api/auctions", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []auction.AuctionDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 4)
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Make, list[i].Make)
	}

	w = do(r, http.MethodGet, "/api/auctions?date=yesterday", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	since := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	w = do(r, http.MethodGet, "/api/auctions?date="+since, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPartialUpdate(t *testing.T) {
	r := newRouter(newMemService())
	alice := token(t, "alice")
	created := create(t, r, alice, "Ford")

	w := do(r, http.MethodPut, "/api/auctions/"+created.ID, alice, `{"model":"Mustang","mileage":61000}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/auctions/"+created.ID, "", "")
	var got auction.AuctionDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Mustang", got.Model)
	assert.Equal(t, 61000, got.Mileage)
	assert.Equal(t, "Ford", got.Make)
	assert.Equal(t, "White", got.Color)
	assert.Equal(t, 2020, got.Year)
}

func TestUpdateErrors(t *testing.T) {
	svc := newMemService()
	r := newRouter(svc)
	alice := token(t, "alice")
	created := create(t, r, alice, "Ford")

	w := do(r, http.MethodPut, "/api/auctions/"+uuid.NewString(), alice, `{"model":"X"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/api/auctions/"+created.ID, token(t, "mallory"), `{"model":"X"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPut, "/api/auctions/"+created.ID, "", `{"model":"X"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPut, "/api/auctions/"+created.ID, alice, `{"mileage":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.saveErr = auction.ErrCouldNotSave
	w = do(r, http.MethodPut, "/api/auctions/"+created.ID, alice, `{"model":"X"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	r := newRouter(newMemService())
	alice := token(t, "alice")
	created := create(t, r, alice, "Ford")

	w := do(r, http.MethodDelete, "/api/auctions/"+created.ID, token(t, "mallory"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodDelete, "/api/auctions/"+created.ID, alice, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/auctions/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/api/auctions/"+created.ID, alice, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type failingService struct{ *memService }

func (f *failingService) ListAuctions(context.Context, *time.Time) ([]auction.AuctionDTO, error) {
	return nil, errors.New("connection reset")
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	r := newRouter(&failingService{memService: newMemService()})

	w := do(r, http.MethodGet, "/api/auctions", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}
