package errors

import (
	"errors"
	"fmt"
)

// HaltError signals that the whole harvest run must stop: the extraction
// rules no longer match what WorldCat serves, and continuing would silently
// drop data. It is never a per-record retry condition.
type HaltError struct {
	OCLCID int64
	Reason string
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("%s (oclc_id=%d)", e.Reason, e.OCLCID)
}

// NewUnknownLabelError reports an attribute-table label missing from the
// label lookup table.
func NewUnknownLabelError(oclcID int64, label string) *HaltError {
	return &HaltError{
		OCLCID: oclcID,
		Reason: fmt.Sprintf("unknown attribute label %q", label),
	}
}

// NewUnknownLanguageError reports edition tokens with no match in the known
// language vocabulary. The raw tokens are included so the vocabulary can be
// updated by hand before resuming.
func NewUnknownLanguageError(oclcID int64, tokens []string) *HaltError {
	return &HaltError{
		OCLCID: oclcID,
		Reason: fmt.Sprintf("no known language among edition tokens %q", tokens),
	}
}

// IsHaltError reports whether err is a HaltError (even when wrapped).
func IsHaltError(err error) bool {
	var haltErr *HaltError
	return errors.As(err, &haltErr)
}
