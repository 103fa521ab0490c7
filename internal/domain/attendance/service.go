package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	// MyMonthly lists the user's attendance for one month.
	MyMonthly(ctx context.Context, userID int64, filter MonthlyFilter) (MonthlyAttendanceResponse, error)

	// Invalidate drops the cached month containing day for the user.
	Invalidate(ctx context.Context, userID int64, day time.Time) error
}
