package schedule

import "errors"

var (
	ErrShiftNotFound    = errors.New("shift not found")
	ErrScheduleNotFound = errors.New("no schedule found for the day")
)
