package unittest

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// Logger returns a zerolog.Logger configured for testing.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(os.Stdout).With().Timestamp().Str("test", t.Name()).Logger().Level(zerolog.DebugLevel)
}
