package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/schedule"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
	"github.com/chocoalano/esas-api/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) schedule.ShiftRepository {
	return &shiftRepository{db: db}
}

// GetByID implements schedule.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, companyID, shiftID int64) (schedule.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, departement_id, name, "in", "out", created_at, updated_at
		FROM time_workes
		WHERE id = $1 AND company_id = $2
	`

	var (
		s       schedule.Shift
		in, out pgtype.Time
	)
	err := q.QueryRow(ctx, query, shiftID, companyID).Scan(
		&s.ID, &s.CompanyID, &s.DepartmentID, &s.Name, &in, &out, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Shift{}, schedule.ErrShiftNotFound
		}
		return schedule.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}

	s.In = clock.FromMicroseconds(in.Microseconds)
	s.Out = clock.FromMicroseconds(out.Microseconds)
	return s, nil
}

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// FindIDForDay implements schedule.ScheduleRepository.
func (r *scheduleRepository) FindIDForDay(ctx context.Context, userID int64, day time.Time) (*int64, error) {
	q := GetQuerier(ctx, r.db)

	var id int64
	err := q.QueryRow(ctx,
		`SELECT id FROM user_timework_schedules WHERE user_id = $1 AND work_day = $2`,
		userID, day,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find schedule for day: %w", err)
	}
	return &id, nil
}
