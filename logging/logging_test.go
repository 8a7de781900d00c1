package logging

import (
	"path/filepath"
	"testing"
)

func TestNewWithoutLogFile(t *testing.T) {
	logger := New("")
	logger.Info().Msg("test message")
}

func TestNewWithLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecap.log")
	logger := New(path)
	logger.Info().Str("carrier", "photo.png").Msg("hiding message")
}
