package logger

import (
	"context"
	"log"
	"os"
)

// BootstrapLogger covers the window before configuration is loaded, when
// the configured logger cannot exist yet. Tests also use it as a cheap
// Logger.
type BootstrapLogger struct {
	logger *log.Logger
}

func NewBootstrapLogger() *BootstrapLogger {
	return &BootstrapLogger{
		logger: log.New(os.Stdout, "[BOOTSTRAP] ", log.LstdFlags|log.Lshortfile),
	}
}

func (b *BootstrapLogger) Debug(ctx context.Context, msg string, args ...any) {
	b.logger.Printf("DEBUG: %s %v", msg, args)
}

func (b *BootstrapLogger) Info(ctx context.Context, msg string, args ...any) {
	b.logger.Printf("INFO: %s %v", msg, args)
}

func (b *BootstrapLogger) Warn(ctx context.Context, msg string, args ...any) {
	b.logger.Printf("WARN: %s %v", msg, args)
}

func (b *BootstrapLogger) Error(ctx context.Context, msg string, args ...any) {
	b.logger.Printf("ERROR: %s %v", msg, args)
}

var _ Logger = (*BootstrapLogger)(nil)
