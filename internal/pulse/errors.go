package pulse

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	// ErrValidation marks a malformed request, e.g. a missing account ID.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing credentials or config; needs operator action.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks an unknown account or an unsupported/mismatched platform.
	ErrNotFound = errors.New("not found")
	// ErrUpstream marks a structured error returned by an external platform.
	ErrUpstream = errors.New("upstream error")
	// ErrTransport marks a network failure or timeout talking to a platform.
	ErrTransport = errors.New("transport error")
)

// Error is a sync failure tagged with one of the kinds above.
type Error struct {
	Kind     error
	Platform Platform
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Platform != "" {
		msg = string(e.Platform) + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error's kind sentinel.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind error, platform Platform, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Platform: platform, Msg: fmt.Sprintf(format, args...), Err: err}
}

// ValidationError builds an ErrValidation failure.
func ValidationError(format string, args ...any) *Error {
	return newError(ErrValidation, "", nil, format, args...)
}

// ConfigurationError builds an ErrConfiguration failure.
func ConfigurationError(platform Platform, format string, args ...any) *Error {
	return newError(ErrConfiguration, platform, nil, format, args...)
}

// NotFoundError builds an ErrNotFound failure.
func NotFoundError(platform Platform, format string, args ...any) *Error {
	return newError(ErrNotFound, platform, nil, format, args...)
}

// UpstreamError builds an ErrUpstream failure carrying the platform's own message.
func UpstreamError(platform Platform, upstreamMsg string) *Error {
	return newError(ErrUpstream, platform, nil, "upstream rejected request: %s", upstreamMsg)
}

// TransportError wraps a network-level failure.
func TransportError(platform Platform, err error) *Error {
	return newError(ErrTransport, platform, err, "request failed")
}

// Retryable reports whether err is worth retrying after a backoff.
func Retryable(err error) bool {
	return errors.Is(err, ErrUpstream) || errors.Is(err, ErrTransport)
}
