package confirmation

import "errors"

// Processing outcomes that are not plain failures. The event handler maps
// these onto the consumer's retry semantics: retryable errors leave the
// offset uncommitted, permanent ones acknowledge and divert to the DLQ.
var (
	ErrBookingNotFound = errors.New("booking referenced by event does not exist")

	ErrRetryable = errors.New("confirmation could not complete, safe to retry")
)
