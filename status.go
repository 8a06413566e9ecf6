package bufds

import "github.com/cockroachdb/errors"

// Status is the coarse outcome of an operation.
type Status int8

const (
	StatusOK Status = iota
	StatusError
	StatusOverflow
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusOverflow:
		return "overflow"
	}
	return "unknown"
}

// StatusOf collapses err into a Status. Callers that need the cause can still
// match err against the specific Err* values.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrOverflow):
		return StatusOverflow
	default:
		return StatusError
	}
}
