package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/pkg/cache"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
)

type AttendanceServiceImpl struct {
	AttendanceRepository attendance.AttendanceRepository
	cache                cache.Cache
	clock                clock.Clock
	cacheTTL             time.Duration
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	c cache.Cache,
	clk clock.Clock,
	cacheTTL time.Duration,
) *AttendanceServiceImpl {
	if c == nil {
		c = cache.Noop{}
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		cache:                c,
		clock:                clk,
		cacheTTL:             cacheTTL,
	}
}

// MyMonthly implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MyMonthly(ctx context.Context, userID int64, filter attendance.MonthlyFilter) (attendance.MonthlyAttendanceResponse, error) {
	filter = filter.WithDefaults(s.clock.Now())
	if err := filter.Validate(); err != nil {
		return attendance.MonthlyAttendanceResponse{}, err
	}

	key := attendance.MonthlyCacheKey(userID, filter.Year, filter.Month)

	var cached attendance.MonthlyAttendanceResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Warn("monthly attendance cache read failed", "key", key, "error", err)
	}
	if found {
		return cached, nil
	}

	from, to := filter.Range(s.clock.Location())
	records, err := s.AttendanceRepository.ListByUserAndMonth(ctx, userID, from, to)
	if err != nil {
		return attendance.MonthlyAttendanceResponse{}, err
	}

	resp := attendance.MonthlyAttendanceResponse{
		Month:       filter.Month,
		Year:        filter.Year,
		Attendances: make([]attendance.AttendanceResponse, 0, len(records)),
	}
	for _, r := range records {
		resp.Attendances = append(resp.Attendances, attendance.ToResponse(r))
	}

	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		slog.Warn("monthly attendance cache write failed", "key", key, "error", err)
	}

	return resp, nil
}

// Invalidate implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Invalidate(ctx context.Context, userID int64, day time.Time) error {
	return s.cache.Delete(ctx, attendance.MonthlyCacheKey(userID, day.Year(), int(day.Month())))
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)
