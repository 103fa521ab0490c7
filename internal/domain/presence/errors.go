package presence

import "errors"

var (
	ErrTokenNotFound    = errors.New("presence token not found")
	ErrTokenAlreadyUsed = errors.New("presence token has already been used")
	ErrTokenExpired     = errors.New("presence token has expired")
	ErrNotInDepartment  = errors.New("you are not registered in this token's department")
	ErrCheckInRequired  = errors.New("you must check in before checking out")

	// ErrPersistence wraps storage failures during redemption.
	ErrPersistence = errors.New("failed to save attendance")
)
