package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnreachable is returned by [Open] when a Redis or MongoDB server does
	// not answer its ping.
	ErrUnreachable = errors.New("cache server unreachable")

	// ErrUnknownBackend is returned by [ParseBackend] for unsupported schemes.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// A server that is still starting, as in a compose file where xkcdify serve
// comes up next to redis, gets pingAttempts tries. The wait starts at
// pingDelay and doubles after every failed ping.
var (
	pingAttempts = 3
	pingDelay    = time.Second
)

// ping calls fn until it succeeds, ctx ends, or the attempts run out. name
// identifies the server in the error, with any password redacted.
func ping(ctx context.Context, name string, fn func(context.Context) error) error {
	delay := pingDelay
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt == pingAttempts {
			return fmt.Errorf("%w: %s after %d pings: %w", ErrUnreachable, name, attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
