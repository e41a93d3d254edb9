package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the process logger. An empty level means info.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	if strings.TrimSpace(level) == "" {
		level = zerolog.InfoLevel.String()
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logger.New: %w", err)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
