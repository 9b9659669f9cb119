package wsprcodex

// Package logger.  Quiet (warnings only) unless the command line or config asks for more.

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ //nolint:exhaustruct
	Prefix: "wsprcodex",
	Level:  log.WarnLevel,
})

// SetLogLevel accepts "debug", "info", "warn", "error" or "fatal".
func SetLogLevel(level string) error {
	var l, err = log.ParseLevel(level)
	if err != nil {
		return err
	}

	logger.SetLevel(l)

	return nil
}

func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}
