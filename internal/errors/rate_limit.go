package errors

import (
	"errors"
	"fmt"
)

// RateLimitError reports that the site throttled a page fetch. It is a
// transient per-identifier condition: the identifier stays unstored and is
// retried by the next run.
type RateLimitError struct {
	OCLCID int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited fetching oclc_id=%d", e.OCLCID)
}

// NewRateLimitError creates a RateLimitError for the given identifier.
func NewRateLimitError(oclcID int64) *RateLimitError {
	return &RateLimitError{OCLCID: oclcID}
}

// IsRateLimitError reports whether err is a RateLimitError (even when
// wrapped).
func IsRateLimitError(err error) bool {
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}
