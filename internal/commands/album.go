package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/urfave/cli"

	"github.com/Oxyrus/virtualtourist/internal/geo"
	"github.com/Oxyrus/virtualtourist/internal/storage"
)

// AlbumCommand registers the album cli command.
var AlbumCommand = cli.Command{
	Name:      "album",
	Usage:     "Fetches a random album for a location",
	ArgsUsage: "[location id]",
	Flags:     albumFlags,
	Action:    albumAction,
}

var albumFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "lat",
		Usage: "latitude of a new location, used when no id is given",
	},
	cli.StringFlag{
		Name:  "lon",
		Usage: "longitude of a new location, used when no id is given",
	},
	cli.StringFlag{
		Name:  "title, t",
		Usage: "title of the new location",
	},
	cli.BoolFlag{
		Name:  "new, n",
		Usage: "replace the current album with a new collection",
	},
	cli.BoolFlag{
		Name:  "prefetch, p",
		Usage: "download the album images into the cache",
	},
}

func albumAction(ctx *cli.Context) error {
	start := time.Now()

	s, err := setup(true)
	if err != nil {
		return err
	}
	defer s.close()

	bg := context.Background()

	loc, err := albumLocation(bg, ctx, s)
	if err != nil {
		return err
	}

	s.logger.Info("fetching album", "location", locationTitle(loc), "id", loc.ID)

	var records []storage.Photo
	if ctx.Bool("new") {
		album, err := s.sync.NewCollection(bg, loc)
		if err != nil {
			return err
		}
		records = album.Photos
	} else {
		pc, err := s.sync.RefreshPageCount(bg, loc).Wait(bg)
		if err != nil {
			return err
		}
		s.logger.Info("page count", "pages", pc.Pages, "total", pc.Total)

		album, err := s.sync.FetchRandomAlbum(bg, loc).Wait(bg)
		if err != nil {
			return err
		}
		records = album.Photos
	}

	if ctx.Bool("prefetch") {
		n, err := s.loader.Prefetch(bg, records, s.cfg.PrefetchWorkers)
		if err != nil {
			return err
		}
		s.logger.Info(fmt.Sprintf("cached %s", english.Plural(n, "image", "images")), "entries", s.images.Len())
	}

	s.logger.Info(fmt.Sprintf("stored %s in %s", english.Plural(len(records), "photo", "photos"), time.Since(start).Round(time.Millisecond)))

	return nil
}

// albumLocation loads the location named by the first argument, or creates
// one from --lat and --lon.
func albumLocation(bg context.Context, ctx *cli.Context, s *services) (storage.Location, error) {
	if ctx.NArg() > 0 {
		id, err := locationArg(ctx)
		if err != nil {
			return storage.Location{}, err
		}
		return s.store.Locations().GetByID(bg, id)
	}

	if ctx.String("lat") == "" || ctx.String("lon") == "" {
		return storage.Location{}, cli.NewExitError("either a location id or --lat and --lon are required", 1)
	}
	lat, err := strconv.ParseFloat(ctx.String("lat"), 64)
	if err != nil {
		return storage.Location{}, cli.NewExitError(fmt.Sprintf("invalid latitude %q", ctx.String("lat")), 1)
	}
	lon, err := strconv.ParseFloat(ctx.String("lon"), 64)
	if err != nil {
		return storage.Location{}, cli.NewExitError(fmt.Sprintf("invalid longitude %q", ctx.String("lon")), 1)
	}
	if err := geo.Validate(lat, lon); err != nil {
		return storage.Location{}, cli.NewExitError(err.Error(), 1)
	}

	return s.store.Locations().Create(bg, storage.LocationCreate{
		Latitude:  lat,
		Longitude: lon,
		Title:     ctx.String("title"),
	})
}
