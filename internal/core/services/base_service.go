package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/middleware"
	"github.com/hazina-bank/core_ledger/internal/platform/metrics"
)

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Warn(msg, keyvals...)
}

// withConflictRetry runs fn and retries it exactly once when the commit
// fails with a concurrency conflict. fn must re-fetch its aggregates on
// every invocation so the retry sees fresh state.
func (s *BaseService) withConflictRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil || !errors.Is(err, apperrors.ErrConcurrencyConflict) {
		return err
	}
	metrics.ConcurrencyRetries.Inc()
	s.LogWarn(ctx, "Concurrency conflict, retrying posting once")
	return fn(ctx)
}
