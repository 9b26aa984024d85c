package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

const retryBaseDelay = 10 * time.Millisecond

// withRetry runs fn once plus up to retries more times while it fails with
// ErrStoreUnavailable. fn must be a whole transaction so a replay starts clean.
func withRetry(ctx context.Context, retries int, logger *zap.Logger, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt*attempt) * retryBaseDelay
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", pkgerrors.ErrStoreUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		err = fn()
		if !errors.Is(err, pkgerrors.ErrStoreUnavailable) {
			return err
		}
		logger.Warn("transaction conflict",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return err
}
