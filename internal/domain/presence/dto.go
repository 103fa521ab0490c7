package presence

import (
	"time"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/pkg/validator"
)

type RedeemRequest struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

func (r *RedeemRequest) Validate() error {
	var errs validator.ValidationErrors

	if !attendance.EventType(r.Type).Valid() {
		errs.Add("type", "type must be in or out")
	}
	if r.ID <= 0 {
		errs.Add("id", "id is required")
	}
	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}

	return errs.Err()
}

type RedeemResponse struct {
	Type         string `json:"type"`
	AttendanceID int64  `json:"attendance_id"`
	Status       string `json:"status"`
	Message      string `json:"message"`
}

type IssueTokenRequest struct {
	CompanyID    int64  `json:"-"`
	DepartmentID int64  `json:"departement_id"`
	ShiftID      int64  `json:"timework_id"`
	Type         string `json:"type"`
}

func (r *IssueTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CompanyID <= 0 {
		errs.Add("company_id", "company_id is required")
	}
	if r.DepartmentID <= 0 {
		errs.Add("departement_id", "departement_id is required")
	}
	if r.ShiftID <= 0 {
		errs.Add("timework_id", "timework_id is required")
	}
	if !attendance.EventType(r.Type).Valid() {
		errs.Add("type", "type must be in or out")
	}

	return errs.Err()
}

type TokenResponse struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	Token        string    `json:"token"`
	DepartmentID int64     `json:"departement_id"`
	ShiftID      int64     `json:"timework_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// QRPayload is the content encoded into the QR image; the mobile app posts it
// back as a RedeemRequest.
type QRPayload struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

func ToTokenResponse(t Token) TokenResponse {
	return TokenResponse{
		ID:           t.ID,
		Type:         string(t.Type),
		Token:        t.Token,
		DepartmentID: t.DepartmentID,
		ShiftID:      t.ShiftID,
		ExpiresAt:    t.ExpiresAt,
	}
}

// RedeemedEvent notifies kiosk screens that a token was consumed so they can
// show the next one.
type RedeemedEvent struct {
	TokenID      int64     `json:"id"`
	Type         string    `json:"type"`
	DepartmentID int64     `json:"departement_id"`
	UserID       int64     `json:"user_id"`
	AttendanceID int64     `json:"attendance_id"`
	Status       string    `json:"status"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

// StreamEvent is one server-sent event on a company's presence feed.
type StreamEvent struct {
	Event string        `json:"event"`
	Data  RedeemedEvent `json:"data"`
}

const EventTokenRedeemed = "presence.redeemed"
