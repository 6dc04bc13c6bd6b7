package dispatch

import "errors"

var (
	// ErrUnknownCar is returned when a notification names a car the Engine
	// was not built with.
	ErrUnknownCar = errors.New("unknown car")
	// ErrInvalidFloor is returned for floors outside [0, floors).
	ErrInvalidFloor = errors.New("floor out of range")
	// ErrInvalidDirection is returned when a hall call direction is neither up nor down.
	ErrInvalidDirection = errors.New("invalid hall call direction")

	// ErrAlreadyCommitted signals that two components decided to serve the
	// same hall call.
	ErrAlreadyCommitted = errors.New("hall call already committed")
	// ErrNotCommitted signals a clear for a hall call no car was sent to.
	ErrNotCommitted = errors.New("hall call not committed")
	// ErrHostContract signals the host reported state that contradicts the
	// mutation it was just given.
	ErrHostContract = errors.New("host contract violation")
)

// Violation kinds used in metric labels, events and journal records.
const (
	ViolationDuplicateCommit = "duplicate_commit"
	ViolationMissingCommit   = "missing_commit"
	ViolationHostContract    = "host_contract"
)

func violationKind(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyCommitted):
		return ViolationDuplicateCommit
	case errors.Is(err, ErrNotCommitted):
		return ViolationMissingCommit
	default:
		return ViolationHostContract
	}
}
