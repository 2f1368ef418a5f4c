package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure by what the caller can do
// about it.
type ErrorKind int

const (
	// KindInvalidInput marks requests rejected before any I/O, such
	// as an empty slug.
	KindInvalidInput ErrorKind = iota

	// KindNotFound means the origin confirmed the article does not
	// exist. Never retried.
	KindNotFound

	// KindClientError covers non-retryable 4xx responses other than
	// 404 and 429.
	KindClientError

	// KindTransient covers 429, 5xx, connection failures and
	// timeouts, surfaced after the retry budget is spent.
	KindTransient

	// KindUnexpected is everything else, surfaced immediately.
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindClientError:
		return "client error"
	case KindTransient:
		return "transient"
	case KindUnexpected:
		return "unexpected"
	}
	return "unknown"
}

// Error is a typed fetch failure.
type Error struct {
	Kind       ErrorKind
	Slug       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Slug)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, slug string, statusCode int, err error) *Error {
	return &Error{Kind: kind, Slug: slug, StatusCode: statusCode, Err: err}
}

func kindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsNotFound reports whether err means the article does not exist.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

// IsTransient reports whether err is worth retrying later.
func IsTransient(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTransient
}

// IsInvalidInput reports whether err was rejected before any I/O.
func IsInvalidInput(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInvalidInput
}
