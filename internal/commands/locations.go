package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/Oxyrus/virtualtourist/internal/geo"
)

// LocationsCommand registers the locations cli command.
var LocationsCommand = cli.Command{
	Name:   "locations",
	Usage:  "Lists stored locations and their photo counts",
	Action: locationsAction,
}

func locationsAction(ctx *cli.Context) error {
	s, err := setup(false)
	if err != nil {
		return err
	}
	defer s.close()

	bg := context.Background()

	list, err := s.store.Locations().List(bg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tBBOX\tPHOTOS\tCREATED")
	for _, loc := range list {
		records, err := s.store.Photos().ListByLocation(bg, loc.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			loc.ID,
			locationTitle(loc),
			geo.BoundingBox(loc.Latitude, loc.Longitude),
			humanize.Comma(int64(len(records))),
			humanize.Time(loc.CreatedAt),
		)
	}

	return w.Flush()
}
