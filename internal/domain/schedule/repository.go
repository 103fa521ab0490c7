package schedule

import (
	"context"
	"time"
)

type ShiftRepository interface {
	// GetByID returns ErrShiftNotFound unless the shift belongs to companyID.
	GetByID(ctx context.Context, companyID, shiftID int64) (Shift, error)
}

type ScheduleRepository interface {
	// FindIDForDay returns the user's schedule id for day, or nil when none is assigned.
	FindIDForDay(ctx context.Context, userID int64, day time.Time) (*int64, error)
}
