package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCollectionNotFound is returned for operations against a collection
	// that does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrNotConfirmed is returned when a destructive operation is invoked
	// without affirmative confirmation.
	ErrNotConfirmed = errors.New("destructive operation not confirmed")

	// ErrEmptyInput is returned when there is nothing to ingest or query.
	ErrEmptyInput = errors.New("empty input")
)

// ConfigError reports an invalid parameter combination, such as
// overlap >= chunk_size or a vector dimension mismatch.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.Msg
}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ConnectivityError wraps a failure to reach the vector store or the
// embedding backend. It is fatal to the operation; no retry is attempted.
type ConnectivityError struct {
	Target string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Target, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// DecodeError reports a file whose bytes could not be decoded after
// exhausting the fallback encodings. It fails only that file.
type DecodeError struct {
	Path string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s with any known encoding", e.Path)
}
