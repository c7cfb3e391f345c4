package ranking

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned by Resolve before any history was loaded.
var ErrNotLoaded = errors.New("ranking history not loaded")

// DataError reports a malformed value in a history or query batch. The whole
// batch is rejected when one is returned.
type DataError struct {
	Entity EntityID
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *DataError) Error() string {
	msg := fmt.Sprintf("invalid %s at row %d", e.Field, e.Row)
	if e.Entity != "" {
		msg += fmt.Sprintf(" (entity %s)", e.Entity)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(": %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataError) Unwrap() error { return e.Err }

// IsDataError reports whether err wraps a *DataError.
func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}
