package llm

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited by completion endpoint")
)

// UpstreamError is any completion failure other than a rate limit.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion endpoint: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ImportError reports an uploaded history file that could not be parsed.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return e.Err.Error()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
