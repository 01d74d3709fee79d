package mtest

import (
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a *slog.Logger whose output
// is associated with the given t.
func NewLogger(t *testing.T) *slog.Logger {
	return slogt.New(t)
}
