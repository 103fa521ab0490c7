package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/chocoalano/esas-api/internal/domain/presence"
	"github.com/chocoalano/esas-api/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgconn"
)

type presenceTransactionRepository struct {
	db *database.DB
}

func NewPresenceTransactionRepository(db *database.DB) presence.TransactionRepository {
	return &presenceTransactionRepository{db: db}
}

// ExistsForToken implements presence.TransactionRepository.
func (r *presenceTransactionRepository) ExistsForToken(ctx context.Context, tokenID int64) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM qr_presence_transactions WHERE qr_presence_id = $1)`,
		tokenID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check presence transaction: %w", err)
	}
	return exists, nil
}

// Create implements presence.TransactionRepository.
func (r *presenceTransactionRepository) Create(ctx context.Context, tx presence.Transaction) (presence.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO qr_presence_transactions (qr_presence_id, user_attendance_id, token)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, tx.TokenID, tx.AttendanceID, tx.Token).
		Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return presence.Transaction{}, presence.ErrTokenAlreadyUsed
		}
		return presence.Transaction{}, fmt.Errorf("failed to create presence transaction: %w", err)
	}

	return tx, nil
}
