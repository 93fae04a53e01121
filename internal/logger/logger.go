package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns the process logger. Debug mode switches to human readable
// console output at debug level.
func Setup(debug bool) zerolog.Logger {
	return New(os.Stderr, debug)
}

func New(out io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if debug {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// WithBuild attaches a logger tagged with the build id to ctx, everything
// downstream logs through zerolog.Ctx.
func WithBuild(ctx context.Context, logger zerolog.Logger, buildID string) context.Context {
	return logger.With().Str("build_id", buildID).Logger().WithContext(ctx)
}
