package poll

import (
	"context"
	"time"
)

// Config holds polling configuration
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultConfig returns a default polling configuration
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Second,
		Timeout:  10 * time.Minute,
	}
}

// CheckFunc inspects the remote state once. It returns done=true when the
// awaited condition holds.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Until calls check immediately and then once per interval until the
// condition holds, the timeout elapses, the context is canceled, or check
// returns an error. An elapsed timeout is not an error: Until returns
// (false, nil) and the caller decides what an incomplete result means.
func Until(ctx context.Context, config Config, check CheckFunc) (bool, error) {
	deadline := time.Now().Add(config.Timeout)

	for {
		done, err := check(ctx)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}

		// Stop early when the next attempt would land past the deadline.
		if !time.Now().Add(config.Interval).Before(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(config.Interval):
			// Next attempt
		}
	}
}
