package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}

	switch strings.ToLower(format) {
	case "json":
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q, expected console or json", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
