package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/urfave/cli"
)

// PurgeCommand registers the purge cli command.
var PurgeCommand = cli.Command{
	Name:      "purge",
	Usage:     "Deletes locations or the photos of a location",
	ArgsUsage: "[location id]",
	Flags:     purgeFlags,
	Action:    purgeAction,
}

var purgeFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "all, a",
		Usage: "delete every location and its photos",
	},
	cli.BoolFlag{
		Name:  "photos-only",
		Usage: "keep the location, delete its photos",
	},
}

func purgeAction(ctx *cli.Context) error {
	s, err := setup(false)
	if err != nil {
		return err
	}
	defer s.close()

	bg := context.Background()

	if ctx.Bool("all") {
		n, err := s.sync.DeleteAllLocations(bg)
		if err != nil {
			return err
		}
		s.logger.Info(fmt.Sprintf("deleted %s", english.Plural(n, "location", "locations")))
		return nil
	}

	id, err := locationArg(ctx)
	if err != nil {
		return err
	}
	loc, err := s.store.Locations().GetByID(bg, id)
	if err != nil {
		return err
	}

	if ctx.Bool("photos-only") {
		n, err := s.sync.DeletePhotos(bg, loc)
		if err != nil {
			return err
		}
		s.logger.Info(fmt.Sprintf("deleted %s from %s", english.Plural(n, "photo", "photos"), locationTitle(loc)))
		return nil
	}

	if err := s.sync.DeleteLocation(bg, loc); err != nil {
		return err
	}
	s.logger.Info("deleted location", "id", loc.ID, "title", locationTitle(loc))
	return nil
}
