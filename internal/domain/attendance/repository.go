package attendance

import (
	"context"
	"time"
)

// AttendanceRepository stores one record per user per work day.
type AttendanceRepository interface {
	// GetByUserAndDay returns ErrAttendanceNotFound when the user has no record for day.
	GetByUserAndDay(ctx context.Context, userID int64, day time.Time) (Attendance, error)

	// GetByUserAndDayForUpdate is GetByUserAndDay holding a row lock until the
	// surrounding transaction ends.
	GetByUserAndDayForUpdate(ctx context.Context, userID int64, day time.Time) (Attendance, error)

	// CreateIfAbsent inserts a. created is false when a record for the same
	// user and day already exists; nothing is written in that case.
	CreateIfAbsent(ctx context.Context, a Attendance) (result Attendance, created bool, err error)

	Update(ctx context.Context, a Attendance) error

	// ListByUserAndMonth returns records with from <= work_day < to, newest first.
	ListByUserAndMonth(ctx context.Context, userID int64, from, to time.Time) ([]Attendance, error)
}
