// Package testutils provides testing utilities and helper functions for the bridge packages.
// It includes key and address fixtures, message signing and a recording JSON-RPC endpoint.
// This package is intended for testing purposes only and should not be used in production code.
package testutils

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// Logger returns a zerolog.Logger configured for testing.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(os.Stdout).Level(zerolog.DebugLevel)
}
