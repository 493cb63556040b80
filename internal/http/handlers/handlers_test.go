package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/virtualtourist/internal/catalog"
	"github.com/Oxyrus/virtualtourist/internal/geo"
	"github.com/Oxyrus/virtualtourist/internal/photosync"
	"github.com/Oxyrus/virtualtourist/internal/storage"
	"github.com/Oxyrus/virtualtourist/internal/storage/storagetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubCatalog struct {
	mu        sync.Mutex
	pageCount catalog.PageCount
	countErr  error
	photos    []catalog.PhotoMeta
	pageErr   error
}

func (s *stubCatalog) FetchPageCount(ctx context.Context, box geo.Box) (catalog.PageCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageCount, s.countErr
}

func (s *stubCatalog) FetchPage(ctx context.Context, box geo.Box, page int) ([]catalog.PhotoMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photos, s.pageErr
}

type stubCache struct {
	mu      sync.Mutex
	evicted []string
}

func (s *stubCache) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evicted = append(s.evicted, id)
}

type stubLocations struct {
	storage.Locations
	listErr error
}

func (s *stubLocations) List(context.Context) ([]storage.Location, error) {
	return nil, s.listErr
}

type env struct {
	store   *storagetest.Store
	catalog *stubCatalog
	cache   *stubCache
	sync    *photosync.Coordinator
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:   storagetest.New(),
		catalog: &stubCatalog{},
		cache:   &stubCache{},
	}
	e.sync = photosync.New(photosync.Options{
		Catalog:   e.catalog,
		Locations: e.store.Locations(),
		Photos:    e.store.Photos(),
		Images:    e.cache,
		Logger:    newTestLogger(),
		IntN:      func(int) int { return 0 },
	})
	return e
}

func (e *env) location(t *testing.T) storage.Location {
	t.Helper()
	loc, err := e.store.Locations().Create(context.Background(), storage.LocationCreate{Latitude: 48.8566, Longitude: 2.25, Title: "Paris"})
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	return loc
}

func (e *env) photo(t *testing.T, locationID int64, remoteID string) storage.Photo {
	t.Helper()
	p, err := e.store.Photos().Create(context.Background(), storage.PhotoCreate{
		LocationID: locationID,
		RemoteID:   remoteID,
		Title:      "photo " + remoteID,
		ImagePath:  "live.staticflickr.com/65535/" + remoteID + "_abc_m.jpg",
	})
	if err != nil {
		t.Fatalf("create photo: %v", err)
	}
	return p
}

func newContext(method, target string, body io.Reader, id int64) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	ctx.Request = req
	if id != 0 {
		ctx.Params = gin.Params{{Key: "id", Value: strconv.FormatInt(id, 10)}}
	}
	return ctx, rec
}
