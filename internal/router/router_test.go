package router_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Oxyrus/virtualtourist/internal/catalog"
	"github.com/Oxyrus/virtualtourist/internal/config"
	"github.com/Oxyrus/virtualtourist/internal/geo"
	"github.com/Oxyrus/virtualtourist/internal/photosync"
	"github.com/Oxyrus/virtualtourist/internal/router"
	"github.com/Oxyrus/virtualtourist/internal/storage"
	"github.com/Oxyrus/virtualtourist/internal/storage/storagetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type emptyCatalog struct{}

func (emptyCatalog) FetchPageCount(context.Context, geo.Box) (catalog.PageCount, error) {
	return catalog.PageCount{}, nil
}

func (emptyCatalog) FetchPage(context.Context, geo.Box, int) ([]catalog.PhotoMeta, error) {
	return nil, nil
}

type noImages struct{}

func (noImages) Image(context.Context, storage.Photo) ([]byte, error) { return nil, nil }
func (noImages) Thumbnail(context.Context, storage.Photo, int) ([]byte, error) {
	return nil, nil
}

type nopCache struct{}

func (nopCache) Remove(string) {}

func newRouter(t *testing.T, token string) (*gin.Engine, *storagetest.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storagetest.New()
	coord := photosync.New(photosync.Options{
		Catalog:   emptyCatalog{},
		Locations: store.Locations(),
		Photos:    store.Photos(),
		Images:    nopCache{},
		Logger:    logger,
	})
	cfg := &config.Config{APIToken: token}
	return router.New(cfg, logger, store, coord, noImages{}), store
}

func serve(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r, _ := newRouter(t, "tok")

	if rec := serve(r, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}
	rec := serve(r, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition output")
	}
}

func TestLocationsRequireToken(t *testing.T) {
	r, _ := newRouter(t, "tok")

	if rec := serve(r, http.MethodGet, "/locations", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/locations", "tok"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestLocationRoutes(t *testing.T) {
	r, store := newRouter(t, "")
	if _, err := store.Locations().Create(context.Background(), storage.LocationCreate{Latitude: 10, Longitude: 20}); err != nil {
		t.Fatalf("create location: %v", err)
	}

	if rec := serve(r, http.MethodGet, "/locations/1/status", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := serve(r, http.MethodGet, "/locations/1/photos", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected photos 200, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodPost, "/locations/1/album", ""); rec.Code != http.StatusConflict {
		t.Fatalf("expected album 409 before page count, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodDelete, "/locations/1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected delete 204, got %d", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/locations/1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestNoRoute(t *testing.T) {
	r, _ := newRouter(t, "")

	rec := serve(r, http.MethodGet, "/nowhere", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"not found"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
