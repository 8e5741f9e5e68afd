// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console logger on dst. quiet raises the level to warn
// unless level is already stricter.
func NewLogger(dst io.Writer, level string, quiet bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
		}
	}
	if quiet && lvl < zerolog.WarnLevel {
		lvl = zerolog.WarnLevel
	}
	out := zerolog.ConsoleWriter{Out: dst, TimeFormat: time.DateTime, NoColor: true}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Warnings logs each message at warn level.
func Warnings(log zerolog.Logger, msgs []string) {
	for _, m := range msgs {
		log.Warn().Msg(m)
	}
}
