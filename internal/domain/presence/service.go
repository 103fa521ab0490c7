package presence

import "context"

type PresenceService interface {
	// Redeem validates a presented token and writes the user's attendance for today.
	Redeem(ctx context.Context, userID int64, req RedeemRequest) (RedeemResponse, error)

	// Issue creates a fresh token for a department and shift.
	Issue(ctx context.Context, req IssueTokenRequest) (TokenResponse, error)

	// QRCode renders one of the company's tokens as a PNG QR code.
	QRCode(ctx context.Context, companyID, id int64) ([]byte, error)

	// Subscribe streams redemptions of the company's tokens until ctx is done.
	Subscribe(ctx context.Context, companyID int64) (<-chan StreamEvent, func())
}
