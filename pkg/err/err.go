package errprocess

import (
	"errors"
	"time"

	"websocket_relay_service/pkg/logger"
)

// Kind classifies relay errors for the client-visible surface
type Kind int

const (
	// KindInternal unexpected failure in a collaborator
	KindInternal Kind = iota
	// KindInvalidArgument missing or malformed required field
	KindInvalidArgument
	// KindNotFound unknown room, connection or message id
	KindNotFound
	// KindRateLimited admission denied, carries retry-after
	KindRateLimited
)

// Error relay error with a kind; the message is safe to show to clients
type Error struct {
	kind       Kind
	msg        string
	retryAfter time.Duration
}

func (e *Error) Error() string {
	return e.msg
}

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return &Error{kind: KindInternal, msg: errMsg}
}

// Invalid invalid argument error
func Invalid(msg string) error {
	return &Error{kind: KindInvalidArgument, msg: msg}
}

// NotFound not found error
func NotFound(msg string) error {
	return &Error{kind: KindNotFound, msg: msg}
}

// RateLimited admission denied error
func RateLimited(msg string, retryAfter time.Duration) error {
	return &Error{kind: KindRateLimited, msg: msg, retryAfter: retryAfter}
}

// KindOf kind of err, KindInternal for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// RetryAfter retry-after carried by a rate limited error, zero otherwise
func RetryAfter(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.retryAfter
	}
	return 0
}
