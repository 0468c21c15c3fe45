package obs

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions adds an optional rotating file sink next to stdout.
type LogOptions struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger configures slog logger with colorful dev output and JSON for production-like envs.
func NewLogger(env string, opts ...LogOptions) *slog.Logger {
	level := slog.LevelInfo
	var writer io.Writer = os.Stdout
	if len(opts) > 0 && opts[0].File != "" {
		writer = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts[0].File,
			MaxSize:    opts[0].MaxSizeMB,
			MaxBackups: opts[0].MaxBackups,
			Compress:   true,
		})
	}
	if env == "dev" || env == "local" {
		return slog.New(tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}))
}
