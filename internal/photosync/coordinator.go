// Package photosync coordinates fetching photo albums for locations: page
// counting, random page selection, record creation and cleanup. One
// Coordinator is built at startup and shared; all methods are safe to call
// from any goroutine. Delivering results to a UI thread is up to the caller.
package photosync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
	"github.com/Oxyrus/virtualtourist/internal/catalog"
	"github.com/Oxyrus/virtualtourist/internal/geo"
	"github.com/Oxyrus/virtualtourist/internal/photos"
	"github.com/Oxyrus/virtualtourist/internal/storage"
)

// Catalog is the remote search the coordinator drives.
type Catalog interface {
	FetchPageCount(ctx context.Context, box geo.Box) (catalog.PageCount, error)
	FetchPage(ctx context.Context, box geo.Box, page int) ([]catalog.PhotoMeta, error)
}

// ImageCache receives evictions for deleted photos.
type ImageCache interface {
	Remove(id string)
}

// PageCount is the pagination summary stored for a location.
type PageCount = catalog.PageCount

// Album is the result of fetching one random page for a location.
type Album struct {
	LocationID int64           `json:"locationId"`
	Page       int             `json:"page"`
	Photos     []storage.Photo `json:"photos"`
}

type Options struct {
	Catalog   Catalog
	Locations storage.Locations
	Photos    storage.Photos
	Images    ImageCache
	Logger    *slog.Logger
	// MaxPages caps the stored page count. Defaults to catalog.DefaultMaxPages.
	MaxPages int
	// IntN returns a uniform value in [0, n). Defaults to math/rand/v2.IntN.
	IntN func(n int) int
}

type Coordinator struct {
	catalog   Catalog
	locations storage.Locations
	photos    storage.Photos
	images    ImageCache
	logger    *slog.Logger
	maxPages  int
	intN      func(n int) int

	mu     sync.Mutex
	states map[int64]*syncState
}

func New(opts Options) *Coordinator {
	c := &Coordinator{
		catalog:   opts.Catalog,
		locations: opts.Locations,
		photos:    opts.Photos,
		images:    opts.Images,
		logger:    opts.Logger,
		maxPages:  opts.MaxPages,
		intN:      opts.IntN,
		states:    make(map[int64]*syncState),
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.maxPages <= 0 {
		c.maxPages = catalog.DefaultMaxPages
	}
	if c.intN == nil {
		c.intN = rand.IntN
	}
	return c
}

// RefreshPageCount asks the catalog how many result pages exist around loc.
// Any request already in flight for loc is cancelled first. On success the
// clamped page count and the photo total are stored for loc.
func (c *Coordinator) RefreshPageCount(ctx context.Context, loc storage.Location) *Request[PageCount] {
	st := c.state(loc.ID)
	box := geo.BoundingBox(loc.Latitude, loc.Longitude)

	var seq uint64
	req := newRequest[PageCount](func() { c.cancelRequest(st, &seq) })

	st.mu.Lock()
	st.abort()
	seq, rctx := st.begin(ctx, PhaseCountingPages, func() { req.complete(PageCount{}, errCancelled()) })
	st.mu.Unlock()

	c.logger.Debug("page count requested", "locationID", loc.ID, "bbox", box.String())

	go func() {
		pc, err := c.catalog.FetchPageCount(rctx, box)

		st.mu.Lock()
		defer st.mu.Unlock()

		if !st.settle(seq, rctx) {
			req.complete(PageCount{}, errCancelled())
			return
		}
		if err != nil {
			st.fail(err)
			c.logger.Warn("page count failed", "locationID", loc.ID, "error", err)
			req.complete(PageCount{}, err)
			return
		}

		pc.Pages = min(max(pc.Pages, 0), c.maxPages)
		st.pagesKnown, st.pages, st.total = true, pc.Pages, pc.Total
		st.phase = PhaseIdle

		c.logger.Info("page count stored", "locationID", loc.ID, "pages", pc.Pages, "total", pc.Total)
		req.complete(pc, nil)
	}()

	return req
}

// FetchRandomAlbum picks a uniformly random page in [1, pages] and stores a
// photo record for every entry on it. It fails fast, without a network call,
// when the page count for loc is unknown or zero.
func (c *Coordinator) FetchRandomAlbum(ctx context.Context, loc storage.Location) *Request[Album] {
	st := c.state(loc.ID)
	box := geo.BoundingBox(loc.Latitude, loc.Longitude)

	st.mu.Lock()
	if !st.pagesKnown {
		st.mu.Unlock()
		return failedRequest[Album](apperr.Precondition("page count unknown"))
	}
	if st.pages <= 0 {
		st.mu.Unlock()
		return failedRequest[Album](apperr.Precondition("no photos available for this location"))
	}
	page := c.intN(st.pages) + 1

	var seq uint64
	req := newRequest[Album](func() { c.cancelRequest(st, &seq) })

	st.abort()
	seq, rctx := st.begin(ctx, PhaseFetchingPage, func() { req.complete(Album{}, errCancelled()) })
	st.mu.Unlock()

	c.logger.Debug("album requested", "locationID", loc.ID, "page", page)

	go func() {
		metas, err := c.catalog.FetchPage(rctx, box, page)

		st.mu.Lock()
		defer st.mu.Unlock()

		if !st.settle(seq, rctx) {
			req.complete(Album{}, errCancelled())
			return
		}
		if err != nil {
			st.fail(err)
			c.logger.Warn("album fetch failed", "locationID", loc.ID, "page", page, "error", err)
			req.complete(Album{}, err)
			return
		}

		created, err := c.createRecords(context.WithoutCancel(ctx), loc.ID, metas)
		if err != nil {
			st.fail(err)
			c.logger.Error("album records not stored", "locationID", loc.ID, "error", err)
			req.complete(Album{}, err)
			return
		}

		st.phase = PhasePopulated
		st.page = page
		st.albumSize = len(created)

		c.logger.Info("album stored", "locationID", loc.ID, "page", page, "photos", len(created))
		req.complete(Album{LocationID: loc.ID, Page: page, Photos: created}, nil)
	}()

	return req
}

// CancelActiveSync cancels the request in flight for the location. It
// reports whether there was one; calling it with nothing in flight is a
// no-op.
func (c *Coordinator) CancelActiveSync(locationID int64) bool {
	st := c.lookup(locationID)
	if st == nil {
		return false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.abort() {
		return false
	}
	c.logger.Info("sync cancelled", "locationID", locationID)
	return true
}

// DeletePhotos removes every photo of loc: each record is detached from the
// location, its cached image evicted and the record deleted. It returns the
// number of photos removed. Running it on a location without photos is a
// no-op.
func (c *Coordinator) DeletePhotos(ctx context.Context, loc storage.Location) (int, error) {
	st := c.state(loc.ID)

	st.mu.Lock()
	defer st.mu.Unlock()

	n, err := c.deletePhotosLocked(ctx, loc.ID)
	if n > 0 && st.phase == PhasePopulated {
		st.phase = PhaseIdle
	}
	st.albumSize = 0
	if err != nil {
		return n, err
	}

	if n > 0 {
		c.logger.Info("photos deleted", "locationID", loc.ID, "count", n)
	}
	return n, nil
}

// DeletePhoto removes a single photo the same way DeletePhotos does.
func (c *Coordinator) DeletePhoto(ctx context.Context, p storage.Photo) error {
	var st *syncState
	if p.LocationID != nil {
		st = c.state(*p.LocationID)
		st.mu.Lock()
		defer st.mu.Unlock()
	}

	if err := c.removePhoto(ctx, p); err != nil {
		return err
	}
	if st != nil && st.albumSize > 0 {
		st.albumSize--
	}

	c.logger.Info("photo deleted", "photoID", p.ID)
	return nil
}

// NewCollection replaces the photos of loc with a fresh random page. The
// page count is refreshed first when it is not known yet.
func (c *Coordinator) NewCollection(ctx context.Context, loc storage.Location) (Album, error) {
	c.CancelActiveSync(loc.ID)

	if _, err := c.DeletePhotos(ctx, loc); err != nil {
		return Album{}, err
	}

	if !c.Status(loc.ID).PagesKnown {
		if _, err := c.RefreshPageCount(ctx, loc).Wait(ctx); err != nil {
			return Album{}, err
		}
	}

	return c.FetchRandomAlbum(ctx, loc).Wait(ctx)
}

// DeleteLocation cancels any sync for loc, removes its photos, deletes the
// location itself and forgets its sync state.
func (c *Coordinator) DeleteLocation(ctx context.Context, loc storage.Location) error {
	st := c.state(loc.ID)

	st.mu.Lock()
	st.abort()
	n, err := c.deletePhotosLocked(ctx, loc.ID)
	if err == nil {
		err = c.locations.Delete(ctx, loc.ID)
	}
	st.mu.Unlock()

	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	c.forget(loc.ID)
	if err != nil {
		return err
	}

	c.logger.Info("location deleted", "locationID", loc.ID, "photos", n)
	return nil
}

// DeleteAllLocations deletes every stored location as DeleteLocation does
// and returns how many were removed.
func (c *Coordinator) DeleteAllLocations(ctx context.Context) (int, error) {
	locs, err := c.locations.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, loc := range locs {
		if err := c.DeleteLocation(ctx, loc); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return deleted, fmt.Errorf("delete location %d: %w", loc.ID, err)
		}
		deleted++
	}
	return deleted, nil
}

// Status returns a snapshot of the sync state of a location. Locations that
// were never synced report PhaseIdle.
func (c *Coordinator) Status(locationID int64) Status {
	st := c.lookup(locationID)
	if st == nil {
		return Status{LocationID: locationID, Phase: PhaseIdle}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snapshot(locationID)
}

// cancelRequest aborts the request numbered *seq if it is still the active
// one. seq is written under st.mu, so it is read under it too.
func (c *Coordinator) cancelRequest(st *syncState, seq *uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.seq == *seq {
		st.abort()
	}
}

// createRecords stores one photo per entry. Entries whose remote id is
// already stored for the location are skipped.
func (c *Coordinator) createRecords(ctx context.Context, locationID int64, metas []catalog.PhotoMeta) ([]storage.Photo, error) {
	created := make([]storage.Photo, 0, len(metas))
	for _, meta := range metas {
		p, err := c.photos.Create(ctx, storage.PhotoCreate{
			LocationID: locationID,
			RemoteID:   meta.ID,
			Title:      meta.Title,
			ImagePath:  photos.Canonicalize(meta.URL),
		})
		if err != nil {
			if errors.Is(err, storage.ErrConflict) {
				c.logger.Debug("duplicate photo skipped", "locationID", locationID, "remoteID", meta.ID)
				continue
			}
			return created, err
		}
		created = append(created, p)
	}
	return created, nil
}

func (c *Coordinator) deletePhotosLocked(ctx context.Context, locationID int64) (int, error) {
	list, err := c.photos.ListByLocation(ctx, locationID)
	if err != nil {
		return 0, err
	}

	for i, p := range list {
		if err := c.removePhoto(ctx, p); err != nil {
			return i, err
		}
	}
	return len(list), nil
}

func (c *Coordinator) removePhoto(ctx context.Context, p storage.Photo) error {
	if err := c.photos.Detach(ctx, p.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	c.images.Remove(photos.CacheKey(p.ImagePath))

	if err := c.photos.Delete(ctx, p.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

func (c *Coordinator) state(locationID int64) *syncState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[locationID]
	if !ok {
		st = &syncState{}
		c.states[locationID] = st
	}
	return st
}

func (c *Coordinator) lookup(locationID int64) *syncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[locationID]
}

func (c *Coordinator) forget(locationID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, locationID)
}
