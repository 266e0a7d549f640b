// Package util provides shared utility functions for chonk.
package util

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
)

// ReadDirRetryOptions returns retry options for directory enumeration.
// Three attempts with doubling backoff (waits of 50ms, then 100ms; capped at
// 150ms) suited to transient syscall errors; anything else fails on the
// first attempt.
func ReadDirRetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Attempts(3),
		retry.Delay(50 * time.Millisecond),
		retry.MaxDelay(150 * time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsTransientFSError),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	}
}

// Retry executes fn with retry logic.
// Returns the last error if all attempts fail.
func Retry(ctx context.Context, fn func() error, opts ...retry.Option) error {
	if len(opts) == 0 {
		opts = ReadDirRetryOptions(ctx)
	}
	return retry.Do(fn, opts...)
}

// IsTransientFSError reports whether a filesystem error is worth retrying.
func IsTransientFSError(err error) bool {
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}
