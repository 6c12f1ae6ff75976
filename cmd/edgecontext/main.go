// Command edgecontext builds and inspects edge request headers.
package main

import (
	"os"

	"github.com/rs/zerolog"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		logger.Error().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}
