package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gamebit/pkg/errors"
	"gamebit/pkg/logger"
)

const retryMaxElapsed = 5 * time.Second

// withRetry retries op on transient Unavailable store errors with
// exponential backoff. Any other failure stops immediately.
func withRetry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = retryMaxElapsed

	err := backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if status.Code(err) == codes.Unavailable {
			logger.Warn("Transient store error, retrying: %v", err)
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(policy, ctx))

	if err != nil && status.Code(err) == codes.Unavailable {
		return errors.ServiceUnavailable("Storage temporarily unavailable", err)
	}
	return err
}
