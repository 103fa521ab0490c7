package attendance

import (
	"fmt"
	"time"

	"github.com/chocoalano/esas-api/internal/pkg/clock"
)

// EventType is the side of the working day an event records.
type EventType string

const (
	EventIn  EventType = "in"
	EventOut EventType = "out"
)

func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventIn, EventOut:
		return EventType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEventType, s)
}

func (e EventType) Valid() bool {
	return e == EventIn || e == EventOut
}

// Status of one side of an attendance record.
// For check-out, unlate means the user left before the shift start.
type Status string

const (
	StatusNormal Status = "normal"
	StatusLate   Status = "late"
	StatusUnlate Status = "unlate"
)

type EntryMethod string

const EntryQRCode EntryMethod = "qrcode"

type Attendance struct {
	ID         int64
	UserID     int64
	ScheduleID *int64
	WorkDay    time.Time

	TimeIn   *clock.TimeOfDay
	LatIn    *float64
	LongIn   *float64
	TypeIn   *EntryMethod
	StatusIn Status

	TimeOut   *clock.TimeOfDay
	LatOut    *float64
	LongOut   *float64
	TypeOut   *EntryMethod
	StatusOut Status

	CreatedBy *int64
	UpdatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event is one check-in or check-out to be written onto a day record.
type Event struct {
	Type       EventType
	UserID     int64
	At         time.Time
	Status     Status
	Latitude   float64
	Longitude  float64
	Method     EntryMethod
	ScheduleID *int64
}

// NewFromEvent builds the first record of the day. Only the event's side is
// populated; the other side keeps StatusNormal.
func NewFromEvent(ev Event) Attendance {
	userID := ev.UserID
	a := Attendance{
		UserID:     ev.UserID,
		ScheduleID: ev.ScheduleID,
		WorkDay:    clock.DateOf(ev.At),
		StatusIn:   StatusNormal,
		StatusOut:  StatusNormal,
		CreatedBy:  &userID,
	}
	a.Apply(ev)
	return a
}

// Apply patches the fields of ev's side and leaves the other side untouched.
func (a *Attendance) Apply(ev Event) {
	at := clock.TimeOfDayOf(ev.At)
	lat, long := ev.Latitude, ev.Longitude
	method := ev.Method
	userID := ev.UserID

	switch ev.Type {
	case EventIn:
		a.TimeIn = &at
		a.LatIn = &lat
		a.LongIn = &long
		a.TypeIn = &method
		a.StatusIn = ev.Status
	case EventOut:
		a.TimeOut = &at
		a.LatOut = &lat
		a.LongOut = &long
		a.TypeOut = &method
		a.StatusOut = ev.Status
	}

	if a.ScheduleID == nil && ev.ScheduleID != nil {
		id := *ev.ScheduleID
		a.ScheduleID = &id
	}
	a.UpdatedBy = &userID
}

func (a Attendance) HasCheckedIn() bool {
	return a.TimeIn != nil
}
