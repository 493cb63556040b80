package photos

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
	"github.com/Oxyrus/virtualtourist/internal/storage"
)

// Fetcher downloads raw image bytes.
type Fetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Cache is the image byte cache the loader reads through. A nil value passed
// to Put evicts.
type Cache interface {
	Get(id string) []byte
	Put(id string, data []byte)
}

// Loader resolves the image bytes of photo records, consulting the cache
// before the network.
type Loader struct {
	fetcher Fetcher
	cache   Cache
	scheme  string
	logger  *slog.Logger
	group   singleflight.Group
}

func NewLoader(fetcher Fetcher, cache Cache, scheme string, logger *slog.Logger) *Loader {
	if scheme == "" {
		scheme = DefaultScheme
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		fetcher: fetcher,
		cache:   cache,
		scheme:  scheme,
		logger:  logger,
	}
}

// Cached returns the cached bytes for p without touching the network.
func (l *Loader) Cached(p storage.Photo) []byte {
	return l.cache.Get(CacheKey(p.ImagePath))
}

// Store writes data to the cache entry of p. Nil data evicts it.
func (l *Loader) Store(p storage.Photo, data []byte) {
	l.cache.Put(CacheKey(p.ImagePath), data)
}

// Image returns the bytes of p, downloading and caching them on a miss.
// Concurrent loads of the same image share one download. The download is
// not tied to any single caller; ctx only bounds how long this caller waits.
func (l *Loader) Image(ctx context.Context, p storage.Photo) ([]byte, error) {
	key := CacheKey(p.ImagePath)
	if key == "" {
		return nil, apperr.Precondition("photo has no image reference")
	}

	if data := l.cache.Get(key); data != nil {
		return data, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		if data := l.cache.Get(key); data != nil {
			return data, nil
		}

		data, err := l.fetcher.FetchImage(flightCtx, SourceURL(p.ImagePath, l.scheme))
		if err != nil {
			return nil, err
		}

		l.cache.Put(key, data)
		l.logger.Debug("image loaded", "photoID", p.ID, "key", key, "bytes", len(data))
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperr.Transport("image load cancelled", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Decode loads p and decodes it into an image.
func (l *Loader) Decode(ctx context.Context, p storage.Photo) (image.Image, error) {
	data, err := l.Image(ctx, p)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Protocol("cannot decode image %q: %v", CacheKey(p.ImagePath), err)
	}
	return img, nil
}

// Thumbnail returns p scaled down to fit a size x size square, JPEG encoded.
// Images already smaller than the square keep their dimensions.
func (l *Loader) Thumbnail(ctx context.Context, p storage.Photo, size int) ([]byte, error) {
	if size <= 0 {
		return nil, apperr.Precondition("thumbnail size must be positive")
	}

	img, err := l.Decode(ctx, p)
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, apperr.Protocol("cannot encode thumbnail: %v", err)
	}
	return buf.Bytes(), nil
}

// Prefetch warms the cache for records using at most workers concurrent
// downloads. Individual failures are logged and skipped; only cancellation
// stops the batch. It returns the number of images now cached.
func (l *Loader) Prefetch(ctx context.Context, records []storage.Photo, workers int) (int, error) {
	if workers <= 0 {
		workers = 1
	}

	var loaded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, p := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := l.Image(gctx, p); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				l.logger.Warn("image prefetch failed", "photoID", p.ID, "error", err)
				return nil
			}
			loaded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(loaded.Load()), apperr.Transport("image prefetch cancelled", err)
	}
	if err := ctx.Err(); err != nil {
		return int(loaded.Load()), apperr.Transport("image prefetch cancelled", err)
	}
	return int(loaded.Load()), nil
}
