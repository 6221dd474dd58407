package log

import (
	"context"
	"log/slog"
)

// LevelCritical marks a failure that aborts the whole crawl, such as a URL
// whose retry budget ran out. It sorts above slog.LevelError.
const LevelCritical = slog.Level(12)

// Critical logs msg at LevelCritical.
func Critical(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	logger.Log(ctx, LevelCritical, msg, args...)
}

// replaceLevelName prints LevelCritical as "CRITICAL" instead of "ERROR+4".
func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 || a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
		return slog.String(slog.LevelKey, "CRITICAL")
	}
	return a
}
