package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheFull is returned by Insert when the entry cannot be admitted:
	// under StrictCapacityLimit because evicting every unpinned entry would
	// still not free enough charge, or because a shared memory budget
	// declined the reservation.
	ErrCacheFull = errors.New("cache: insert would exceed capacity")

	// ErrCacheClosed is returned by Insert after Close.
	ErrCacheClosed = errors.New("cache: closed")
)

// ConfigError reports an invalid builder option combination.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cache: invalid option %s: %s", e.Option, e.Reason)
}
