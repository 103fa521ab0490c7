package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
	"github.com/chocoalano/esas-api/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const attendanceColumns = `
	id, user_id, user_timework_schedule_id, work_day,
	time_in, lat_in, long_in, type_in, status_in,
	time_out, lat_out, long_out, type_out, status_out,
	created_by, updated_by, created_at, updated_at`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// GetByUserAndDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByUserAndDay(ctx context.Context, userID int64, day time.Time) (attendance.Attendance, error) {
	return r.getByUserAndDay(ctx, userID, day, "")
}

// GetByUserAndDayForUpdate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByUserAndDayForUpdate(ctx context.Context, userID int64, day time.Time) (attendance.Attendance, error) {
	return r.getByUserAndDay(ctx, userID, day, "FOR UPDATE")
}

func (r *attendanceRepository) getByUserAndDay(ctx context.Context, userID int64, day time.Time, lock string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM user_attendances
		WHERE user_id = $1 AND work_day = $2
		` + lock

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by user and day: %w", err)
	}
	return att, nil
}

// CreateIfAbsent implements attendance.AttendanceRepository.
func (r *attendanceRepository) CreateIfAbsent(ctx context.Context, a attendance.Attendance) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO user_attendances (
			user_id, user_timework_schedule_id, work_day,
			time_in, lat_in, long_in, type_in, status_in,
			time_out, lat_out, long_out, type_out, status_out,
			created_by, updated_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		ON CONFLICT (user_id, work_day) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		a.UserID,
		a.ScheduleID,
		a.WorkDay,
		timeParam(a.TimeIn),
		a.LatIn,
		a.LongIn,
		methodParam(a.TypeIn),
		string(a.StatusIn),
		timeParam(a.TimeOut),
		a.LatOut,
		a.LongOut,
		methodParam(a.TypeOut),
		string(a.StatusOut),
		a.CreatedBy,
		a.UpdatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, false, nil
		}
		return attendance.Attendance{}, false, fmt.Errorf("failed to create attendance: %w", err)
	}

	return a, true, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE user_attendances SET
			user_timework_schedule_id = $2,
			time_in = $3, lat_in = $4, long_in = $5, type_in = $6, status_in = $7,
			time_out = $8, lat_out = $9, long_out = $10, type_out = $11, status_out = $12,
			updated_by = $13,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		a.ID,
		a.ScheduleID,
		timeParam(a.TimeIn), a.LatIn, a.LongIn, methodParam(a.TypeIn), string(a.StatusIn),
		timeParam(a.TimeOut), a.LatOut, a.LongOut, methodParam(a.TypeOut), string(a.StatusOut),
		a.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByUserAndMonth implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByUserAndMonth(ctx context.Context, userID int64, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM user_attendances
		WHERE user_id = $1 AND work_day >= $2 AND work_day < $3
		ORDER BY work_day DESC
	`

	rows, err := q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	result := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		result = append(result, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return result, nil
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		a                   attendance.Attendance
		timeIn, timeOut     pgtype.Time
		typeIn, typeOut     *string
		statusIn, statusOut string
	)

	err := row.Scan(
		&a.ID, &a.UserID, &a.ScheduleID, &a.WorkDay,
		&timeIn, &a.LatIn, &a.LongIn, &typeIn, &statusIn,
		&timeOut, &a.LatOut, &a.LongOut, &typeOut, &statusOut,
		&a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	a.TimeIn = timeOfDay(timeIn)
	a.TimeOut = timeOfDay(timeOut)
	a.TypeIn = entryMethod(typeIn)
	a.TypeOut = entryMethod(typeOut)
	a.StatusIn = attendance.Status(statusIn)
	a.StatusOut = attendance.Status(statusOut)

	return a, nil
}

func timeParam(t *clock.TimeOfDay) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

func timeOfDay(t pgtype.Time) *clock.TimeOfDay {
	if !t.Valid {
		return nil
	}
	tod := clock.FromMicroseconds(t.Microseconds)
	return &tod
}

func methodParam(m *attendance.EntryMethod) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}

func entryMethod(s *string) *attendance.EntryMethod {
	if s == nil {
		return nil
	}
	m := attendance.EntryMethod(*s)
	return &m
}
