package eventbus

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/samSKIF/EmployeeRewards-sub009/event"
)

// RetryingHandler decorates a handler with exponential-backoff retry, so a
// transiently failing subscriber gets a bounded number of attempts before the
// bus records the delivery as failed. Context cancellation is permanent and
// stops the retry loop immediately.
func RetryingHandler(h Handler, maxElapsedTime time.Duration) Handler {
	return func(ctx context.Context, evt event.Event) error {
		operation := func() (any, error) {
			err := h(ctx, evt)
			if err != nil && errors.Is(err, context.Canceled) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		bo := backoff.NewExponentialBackOff()
		_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(maxElapsedTime))
		return err
	}
}
