// Command go_pool runs the object pool server and its utilities.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/andrei-cloud/go_pool/internal/commands/cli"
)

func main() {
	root, err := cli.NewRootCommand()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build commands")
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
