package attendance

import (
	"fmt"
	"time"

	"github.com/chocoalano/esas-api/internal/pkg/validator"
)

type MonthlyFilter struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// WithDefaults fills a zero month or year from now.
func (f MonthlyFilter) WithDefaults(now time.Time) MonthlyFilter {
	if f.Month == 0 {
		f.Month = int(now.Month())
	}
	if f.Year == 0 {
		f.Year = now.Year()
	}
	return f
}

func (f *MonthlyFilter) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(f.Month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if !validator.IsValidYear(f.Year) {
		errs.Add("year", "year must be between 2000 and 9999")
	}

	return errs.Err()
}

// Range returns [first day of month, first day of next month) in loc.
func (f MonthlyFilter) Range(loc *time.Location) (time.Time, time.Time) {
	from := time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// MonthlyCacheKey names the cached month of a user's records.
func MonthlyCacheKey(userID int64, year, month int) string {
	return fmt.Sprintf("attendance.monthly.%d.%d.%d", userID, year, month)
}

type AttendanceResponse struct {
	ID         int64    `json:"id"`
	UserID     int64    `json:"user_id"`
	ScheduleID *int64   `json:"schedule_id,omitempty"`
	Date       string   `json:"date"`
	TimeIn     *string  `json:"time_in,omitempty"`
	StatusIn   string   `json:"status_in"`
	TypeIn     *string  `json:"type_in,omitempty"`
	LatIn      *float64 `json:"lat_in,omitempty"`
	LongIn     *float64 `json:"long_in,omitempty"`
	TimeOut    *string  `json:"time_out,omitempty"`
	StatusOut  string   `json:"status_out"`
	TypeOut    *string  `json:"type_out,omitempty"`
	LatOut     *float64 `json:"lat_out,omitempty"`
	LongOut    *float64 `json:"long_out,omitempty"`
}

type MonthlyAttendanceResponse struct {
	Month       int                  `json:"month"`
	Year        int                  `json:"year"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func ToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		ScheduleID: a.ScheduleID,
		Date:       a.WorkDay.Format("2006-01-02"),
		StatusIn:   string(a.StatusIn),
		StatusOut:  string(a.StatusOut),
		LatIn:      a.LatIn,
		LongIn:     a.LongIn,
		LatOut:     a.LatOut,
		LongOut:    a.LongOut,
	}
	if a.TimeIn != nil {
		s := a.TimeIn.String()
		resp.TimeIn = &s
	}
	if a.TimeOut != nil {
		s := a.TimeOut.String()
		resp.TimeOut = &s
	}
	if a.TypeIn != nil {
		s := string(*a.TypeIn)
		resp.TypeIn = &s
	}
	if a.TypeOut != nil {
		s := string(*a.TypeOut)
		resp.TypeOut = &s
	}
	return resp
}
