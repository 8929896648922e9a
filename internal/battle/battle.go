// Package battle ties together the turn controller, battle field, effect
// system and room binding into a single networked battle engine. Shared
// cross-package primitives — party indices and the battle-scoped logger —
// live here; the substantive packages are the subdirectories.
package battle

import (
	"context"
	"log/slog"
)

// Party identifies one of the two sides of a battle.
type Party byte

const (
	PartyA Party = 0
	PartyB Party = 1
)

// Opponent returns the other party.
func (p Party) Opponent() Party {
	if p == PartyA {
		return PartyB
	}
	return PartyA
}

type loggerKey struct{}

// WithLogger returns a context carrying logger, retrievable with LoggerFromContext.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the battle-scoped logger attached to ctx, or
// slog.Default() if none was attached. Mirrors internal/middleware.FromContext,
// but for the battle/turn/field call chain rather than an HTTP request.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// NewBattleLogger returns a logger pre-tagged with the battle and room it
// belongs to, for attaching to a context via WithLogger.
func NewBattleLogger(battleID, roomID string) *slog.Logger {
	return slog.Default().With("battle_id", battleID, "room_id", roomID)
}
