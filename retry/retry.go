// retry/retry.go
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// Do runs fn until it succeeds, the policy gives up or ctx is done. When the
// policy gives up the last error is returned wrapped in ErrRetriesExhausted.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	if policy == nil {
		policy = Never{}
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		delay, ok := policy.NextRetry(attempt)
		if !ok {
			if attempt == 0 {
				return err
			}
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt+1, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}
