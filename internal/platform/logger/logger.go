package logger

import "context"

// Logger is the structured logging interface the rest of the codebase
// depends on; args are alternating key/value pairs.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
}
