package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/Oxyrus/virtualtourist/internal/commands"
)

var version = "development"

func main() {
	app := cli.NewApp()
	app.Name = "virtualtourist"
	app.HelpName = filepath.Base(os.Args[0])
	app.Usage = "Fetch and cache photo albums for places on a map"
	app.Version = version
	app.EnableBashCompletion = true

	app.Commands = []cli.Command{
		commands.ServeCommand,
		commands.AlbumCommand,
		commands.LocationsCommand,
		commands.PurgeCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
