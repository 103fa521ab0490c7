package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/domain/presence"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
	"github.com/chocoalano/esas-api/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const tokenJoinQuery = `
	SELECT qp.id, qp.type, qp.token, qp.departement_id, qp.timework_id,
		   qp.for_presence, qp.expires_at, qp.created_at, qp.updated_at,
		   d.name, tw."in", tw.company_id
	FROM qr_presences qp
	JOIN departements d ON d.id = qp.departement_id
	JOIN time_workes tw ON tw.id = qp.timework_id
`

type presenceTokenRepository struct {
	db *database.DB
}

func NewPresenceTokenRepository(db *database.DB) presence.TokenRepository {
	return &presenceTokenRepository{db: db}
}

// Create implements presence.TokenRepository.
func (r *presenceTokenRepository) Create(ctx context.Context, token presence.Token) (presence.Token, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO qr_presences (type, token, departement_id, timework_id, for_presence, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		string(token.Type),
		token.Token,
		token.DepartmentID,
		token.ShiftID,
		token.ForPresence,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt, &token.UpdatedAt)
	if err != nil {
		return presence.Token{}, fmt.Errorf("failed to create presence token: %w", err)
	}

	return token, nil
}

// GetByIDAndType implements presence.TokenRepository.
func (r *presenceTokenRepository) GetByIDAndType(ctx context.Context, id int64, eventType attendance.EventType) (presence.Token, error) {
	q := GetQuerier(ctx, r.db)

	row := q.QueryRow(ctx, tokenJoinQuery+`WHERE qp.id = $1 AND qp.type = $2`, id, string(eventType))
	return r.scan(row)
}

// GetByID implements presence.TokenRepository.
func (r *presenceTokenRepository) GetByID(ctx context.Context, id int64) (presence.Token, error) {
	q := GetQuerier(ctx, r.db)

	row := q.QueryRow(ctx, tokenJoinQuery+`WHERE qp.id = $1`, id)
	return r.scan(row)
}

// LockByID implements presence.TokenRepository.
func (r *presenceTokenRepository) LockByID(ctx context.Context, id int64) error {
	q := GetQuerier(ctx, r.db)

	var locked int64
	err := q.QueryRow(ctx, `SELECT id FROM qr_presences WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return presence.ErrTokenNotFound
		}
		return fmt.Errorf("failed to lock presence token: %w", err)
	}
	return nil
}

// DeleteExpiredUnused implements presence.TokenRepository.
func (r *presenceTokenRepository) DeleteExpiredUnused(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM qr_presences qp
		WHERE qp.expires_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM qr_presence_transactions t WHERE t.qr_presence_id = qp.id
		  )
	`

	tag, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired presence tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *presenceTokenRepository) scan(row pgx.Row) (presence.Token, error) {
	var (
		t          presence.Token
		eventType  string
		shiftStart pgtype.Time
	)

	err := row.Scan(
		&t.ID, &eventType, &t.Token, &t.DepartmentID, &t.ShiftID,
		&t.ForPresence, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt,
		&t.DepartmentName, &shiftStart, &t.CompanyID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return presence.Token{}, presence.ErrTokenNotFound
		}
		return presence.Token{}, fmt.Errorf("failed to get presence token: %w", err)
	}

	t.Type = attendance.EventType(eventType)
	t.ShiftStart = clock.FromMicroseconds(shiftStart.Microseconds)
	return t, nil
}
