package shared

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// LogOptions selects the level and output format of NewLogger.
type LogOptions struct {
	Level  string
	Format string
	Writer io.Writer
}

// NewLogger builds a zerolog logger. Empty level means info, empty format
// means console.
func NewLogger(options LogOptions) (zerolog.Logger, error) {
	writer := options.Writer
	if writer == nil {
		writer = os.Stderr
	}

	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(options.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", options.Level, err)
		}
		level = parsed
	}

	switch strings.ToLower(strings.TrimSpace(options.Format)) {
	case "", LogFormatConsole:
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	case LogFormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("unsupported log format %q", options.Format)
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
