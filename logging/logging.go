// Package logging sets up the CLI's structured logger. The core ecap,
// backends, cryptoutils, headers, and errs packages stay silent — only
// the command-line layer logs, replacing the status lines the original
// tool printed directly with fmt.Println.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a zerolog.Logger that writes a human-readable console line
// to stderr, and additionally to a size-rotated file at logPath when
// logPath is non-empty.
func New(logPath string) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	var writer io.Writer = console
	if logPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(console, rotator)
	}

	return zerolog.New(writer).With().Timestamp().Logger()
}
