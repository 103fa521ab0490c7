package http

import (
	"net/http"
	"strconv"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/handler/http/middleware"
	"github.com/chocoalano/esas-api/internal/handler/http/response"
	"github.com/chocoalano/esas-api/internal/pkg/validator"
)

type AttendanceHandler interface {
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := middleware.UserIDFromContext(ctx)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var (
		filter attendance.MonthlyFilter
		errs   validator.ValidationErrors
	)
	if month := r.URL.Query().Get("month"); month != "" {
		if filter.Month, err = strconv.Atoi(month); err != nil {
			errs.Add("month", "month must be a number")
		}
	}
	if year := r.URL.Query().Get("year"); year != "" {
		if filter.Year, err = strconv.Atoi(year); err != nil {
			errs.Add("year", "year must be a number")
		}
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.attendanceService.MyMonthly(ctx, userID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
