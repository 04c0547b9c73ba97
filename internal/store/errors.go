package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record or job does not exist.
var ErrNotFound = errors.New("not found")

// ConfigurationError reports a persistently misconfigured backend, such as
// an unwritable data directory. Unlike transient primary failures it is
// surfaced to the caller instead of being absorbed by the fallback path.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("storage misconfigured: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
