// Package logging is the structured logger shared by the movieshelf client
// and server. The server writes JSON records to stdout; the CLI writes text
// records to stderr so they stay out of the REPL transcript.
package logging

import "context"

// Logger takes alternating key/value args after the message:
//
//	logger.Warn(ctx, "failed to record search", "term", term, "error", err)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record, e.g.
	// With("module", "trending").
	With(args ...any) Logger
}
