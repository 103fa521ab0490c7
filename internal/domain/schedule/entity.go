package schedule

import (
	"time"

	"github.com/chocoalano/esas-api/internal/pkg/clock"
)

// Shift is a company's working time; In is the late boundary.
type Shift struct {
	ID           int64
	CompanyID    int64
	DepartmentID *int64
	Name         string
	In           clock.TimeOfDay
	Out          clock.TimeOfDay
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
