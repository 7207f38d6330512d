package imgsearch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned before any request is made when the
	// query, the options or the client credentials are unusable.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTransport covers failures building or sending the request and
	// non-2xx upstream responses.
	ErrTransport = errors.New("transport error")
	// ErrDecode is returned when the body is not JSON or lacks a field
	// needed to build an Item.
	ErrDecode = errors.New("decode error")
)

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrTransport
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func decodeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

func missingField(path string) error {
	return decodeError("missing field %q", path)
}
