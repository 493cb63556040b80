// Package commands implements the virtualtourist command line.
package commands

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/urfave/cli"

	"github.com/Oxyrus/virtualtourist/internal/catalog"
	"github.com/Oxyrus/virtualtourist/internal/config"
	"github.com/Oxyrus/virtualtourist/internal/imagestore"
	"github.com/Oxyrus/virtualtourist/internal/logging"
	"github.com/Oxyrus/virtualtourist/internal/photos"
	"github.com/Oxyrus/virtualtourist/internal/photosync"
	"github.com/Oxyrus/virtualtourist/internal/storage"
	"github.com/Oxyrus/virtualtourist/internal/storage/sqlite"
)

// services holds everything a command needs, built from the environment.
type services struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *sqlite.Store
	images  *imagestore.Store
	catalog *catalog.Client
	loader  *photos.Loader
	sync    *photosync.Coordinator
}

// setup loads the configuration and opens the stores. The caller must call
// close when done.
func setup(needCatalog bool) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if needCatalog {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", cfg.DBPath, err)
	}

	images, err := imagestore.New(cfg.CacheDir, logger.With("component", "imagestore"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Debug("image cache opened", "dir", images.Dir())

	client := catalog.New(catalog.Options{
		BaseURL:    cfg.CatalogURL,
		APIKey:     cfg.APIKey,
		Method:     cfg.SearchMethod,
		ImageField: cfg.ImageField,
		PerPage:    cfg.PerPage,
		MaxPages:   cfg.MaxPages,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     logger.With("component", "catalog"),
	})

	coord := photosync.New(photosync.Options{
		Catalog:   client,
		Locations: store.Locations(),
		Photos:    store.Photos(),
		Images:    images,
		Logger:    logger.With("component", "photosync"),
		MaxPages:  client.MaxPages(),
	})

	return &services{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		images:  images,
		catalog: client,
		loader:  photos.NewLoader(client, images, cfg.ImageScheme, logger.With("component", "photos")),
		sync:    coord,
	}, nil
}

func (s *services) close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close sqlite database", "error", err)
	}
}

// locationArg parses the first positional argument as a location id.
func locationArg(ctx *cli.Context) (int64, error) {
	arg := ctx.Args().First()
	if arg == "" {
		return 0, cli.NewExitError("location id required", 1)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.NewExitError(fmt.Sprintf("invalid location id %q", arg), 1)
	}
	return id, nil
}

func locationTitle(loc storage.Location) string {
	if loc.Title != "" {
		return loc.Title
	}
	return fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
}
