package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "lphistory",
		Usage: "fetch and plot the ranked solo queue LP history of a player",
		Commands: []*cli.Command{
			fetchCommand(),
			chartCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run lphistory")
	}
}
