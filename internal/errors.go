package internal

import (
	"errors"
	"fmt"
)

// ErrChannelUnavailable is returned when the real-time channel was never
// opened or has been closed. It only ever triggers the one-shot fallback.
var ErrChannelUnavailable = errors.New("real-time channel unavailable")

// RequestError represents a failed one-shot request: a network failure or a
// non-2xx status
type RequestError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request error: %s returned status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("request error: %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing data
type ParseError struct {
	Source string // "oneshot", "realtime", "config"
	Key    string // endpoint, frame or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
