// Package rerr declares the error kinds the page-read path can fail with.
package rerr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Use errors.Is against these, never direct equality,
// since every constructor below wraps a cause.
var (
	IO              = errors.New("io")
	InvalidArgument = errors.New("invalid argument")
	ClosedState     = errors.New("closed state")
	CacheLoad       = errors.New("cache load")
)

// WrapIO builds an IO error carrying msg and an optional cause.
func WrapIO(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, IO)
	}
	return fmt.Errorf("%s: %w: %w", msg, IO, cause)
}

// InvalidArg builds an InvalidArgument error.
func InvalidArg(msg string) error {
	return fmt.Errorf("%s: %w", msg, InvalidArgument)
}

// Closed builds a ClosedState error naming the operation that was attempted.
func Closed(op string) error {
	return fmt.Errorf("%s: %w", op, ClosedState)
}

// FromCacheLoad unwraps a cache loader failure: an IO cause is
// re-raised as IO, anything else is re-raised as IO carrying the cause.
func FromCacheLoad(cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, IO) {
		return cause
	}
	return fmt.Errorf("cache load failed: %w: %w", IO, cause)
}
