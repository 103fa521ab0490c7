package response

import (
	"errors"
	"net/http"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/domain/auth"
	"github.com/chocoalano/esas-api/internal/domain/company"
	"github.com/chocoalano/esas-api/internal/domain/presence"
	"github.com/chocoalano/esas-api/internal/domain/schedule"
	"github.com/chocoalano/esas-api/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserIDMissing):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAdminPrivilegeRequired), errors.Is(err, auth.ErrCompanyIDMissing):
		Forbidden(w, err.Error())

	// Presence domain errors
	case errors.Is(err, presence.ErrPersistence):
		InternalServerError(w, "Failed to save attendance, please scan the QR code again")
	case errors.Is(err, presence.ErrTokenNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, presence.ErrTokenAlreadyUsed):
		Conflict(w, err.Error())
	case errors.Is(err, presence.ErrTokenExpired):
		Gone(w, err.Error())
	case errors.Is(err, presence.ErrNotInDepartment):
		Forbidden(w, err.Error())
	case errors.Is(err, presence.ErrCheckInRequired):
		UnprocessableEntity(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidEventType):
		BadRequest(w, err.Error(), nil)

	// Company and schedule domain errors
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, schedule.ErrShiftNotFound):
		NotFound(w, "Shift not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
