package presence

import (
	"context"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
)

type TokenRepository interface {
	Create(ctx context.Context, token Token) (Token, error)

	// GetByIDAndType returns the token with its department and shift joined,
	// or ErrTokenNotFound.
	GetByIDAndType(ctx context.Context, id int64, eventType attendance.EventType) (Token, error)

	GetByID(ctx context.Context, id int64) (Token, error)

	// LockByID takes a row lock on the token for the rest of the transaction.
	LockByID(ctx context.Context, id int64) error

	// DeleteExpiredUnused removes tokens that expired before cutoff and were never redeemed.
	DeleteExpiredUnused(ctx context.Context, cutoff time.Time) (int64, error)
}

type TransactionRepository interface {
	ExistsForToken(ctx context.Context, tokenID int64) (bool, error)

	// Create returns ErrTokenAlreadyUsed when the token already has a transaction.
	Create(ctx context.Context, tx Transaction) (Transaction, error)
}
