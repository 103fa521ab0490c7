package presence

import (
	"time"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
)

// Token is a single-use presence credential joined with its department and shift.
type Token struct {
	ID           int64
	Type         attendance.EventType
	Token        string
	DepartmentID int64
	ShiftID      int64
	ForPresence  time.Time
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Populated by the lookup join.
	DepartmentName string
	ShiftStart     clock.TimeOfDay
	CompanyID      int64
}

// Expired reports whether now is strictly after ExpiresAt.
func (t Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Transaction records that a token was redeemed into an attendance record.
type Transaction struct {
	ID           int64
	TokenID      int64
	AttendanceID int64
	Token        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Classify decides the status of an event at now against the shift start,
// anchored on now's date.
func Classify(now time.Time, shiftStart clock.TimeOfDay, event attendance.EventType) attendance.Status {
	early := now.Before(shiftStart.On(now))

	if event == attendance.EventOut {
		if early {
			return attendance.StatusUnlate
		}
		return attendance.StatusNormal
	}

	if early {
		return attendance.StatusNormal
	}
	return attendance.StatusLate
}
