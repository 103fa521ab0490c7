package presence

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/domain/company"
	"github.com/chocoalano/esas-api/internal/domain/employee"
	"github.com/chocoalano/esas-api/internal/domain/presence"
	"github.com/chocoalano/esas-api/internal/domain/schedule"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
	"github.com/chocoalano/esas-api/internal/pkg/database"
	"github.com/chocoalano/esas-api/internal/pkg/qrcode"
	"github.com/chocoalano/esas-api/internal/pkg/sse"
)

// TokenSealer produces the opaque token string of a new presence token.
type TokenSealer interface {
	Seal(issuedAt time.Time) (string, error)
}

// MonthlyInvalidator drops cached monthly views after a redemption.
type MonthlyInvalidator interface {
	Invalidate(ctx context.Context, userID int64, day time.Time) error
}

type PresenceServiceImpl struct {
	tx                    database.Transactor
	TokenRepository       presence.TokenRepository
	TransactionRepository presence.TransactionRepository
	AttendanceRepository  attendance.AttendanceRepository
	EmploymentRepository  employee.EmploymentRepository
	CompanyRepository     company.CompanyRepository
	ShiftRepository       schedule.ShiftRepository
	ScheduleRepository    schedule.ScheduleRepository
	clock                 clock.Clock
	sealer                TokenSealer
	monthly               MonthlyInvalidator
	hub                   *sse.Hub
	tokenTTL              time.Duration
}

func NewPresenceService(
	tx database.Transactor,
	tokenRepo presence.TokenRepository,
	transactionRepo presence.TransactionRepository,
	attendanceRepo attendance.AttendanceRepository,
	employmentRepo employee.EmploymentRepository,
	companyRepo company.CompanyRepository,
	shiftRepo schedule.ShiftRepository,
	scheduleRepo schedule.ScheduleRepository,
	clk clock.Clock,
	sealer TokenSealer,
	monthly MonthlyInvalidator,
	hub *sse.Hub,
	tokenTTL time.Duration,
) presence.PresenceService {
	return &PresenceServiceImpl{
		tx:                    tx,
		TokenRepository:       tokenRepo,
		TransactionRepository: transactionRepo,
		AttendanceRepository:  attendanceRepo,
		EmploymentRepository:  employmentRepo,
		CompanyRepository:     companyRepo,
		ShiftRepository:       shiftRepo,
		ScheduleRepository:    scheduleRepo,
		clock:                 clk,
		sealer:                sealer,
		monthly:               monthly,
		hub:                   hub,
		tokenTTL:              tokenTTL,
	}
}

// Redeem implements presence.PresenceService.
func (s *PresenceServiceImpl) Redeem(ctx context.Context, userID int64, req presence.RedeemRequest) (presence.RedeemResponse, error) {
	if err := req.Validate(); err != nil {
		return presence.RedeemResponse{}, err
	}
	eventType := attendance.EventType(req.Type)
	now := s.clock.Now()
	today := clock.DateOf(now)

	token, err := s.TokenRepository.GetByIDAndType(ctx, req.ID, eventType)
	if err != nil {
		return presence.RedeemResponse{}, err
	}
	if subtle.ConstantTimeCompare([]byte(token.Token), []byte(req.Token)) != 1 {
		return presence.RedeemResponse{}, presence.ErrTokenNotFound
	}

	if err := s.checkValidity(ctx, userID, token, now, today); err != nil {
		return presence.RedeemResponse{}, err
	}

	status := presence.Classify(now, token.ShiftStart, eventType)

	// Coordinates come from the company owning the token's shift.
	comp, err := s.CompanyRepository.GetByID(ctx, token.CompanyID)
	if err != nil {
		return presence.RedeemResponse{}, fmt.Errorf("failed to get company coordinates: %w", err)
	}
	scheduleID, err := s.ScheduleRepository.FindIDForDay(ctx, userID, today)
	if err != nil {
		return presence.RedeemResponse{}, fmt.Errorf("failed to find schedule: %w", err)
	}

	ev := attendance.Event{
		Type:       eventType,
		UserID:     userID,
		At:         now,
		Status:     status,
		Latitude:   comp.Latitude,
		Longitude:  comp.Longitude,
		Method:     attendance.EntryQRCode,
		ScheduleID: scheduleID,
	}

	var record attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.TokenRepository.LockByID(ctx, token.ID); err != nil {
			return err
		}
		used, err := s.TransactionRepository.ExistsForToken(ctx, token.ID)
		if err != nil {
			return err
		}
		if used {
			return presence.ErrTokenAlreadyUsed
		}

		record, err = s.writeAttendance(ctx, ev, today)
		if err != nil {
			return err
		}

		_, err = s.TransactionRepository.Create(ctx, presence.Transaction{
			TokenID:      token.ID,
			AttendanceID: record.ID,
			Token:        token.Token,
		})
		return err
	})
	if err != nil {
		if isBusinessError(err) {
			return presence.RedeemResponse{}, err
		}
		slog.Error("failed to redeem presence token",
			"user_id", userID,
			"token_id", token.ID,
			"type", eventType,
			"error", err,
		)
		return presence.RedeemResponse{}, fmt.Errorf("%w: %w", presence.ErrPersistence, err)
	}

	if s.monthly != nil {
		if err := s.monthly.Invalidate(ctx, userID, today); err != nil {
			slog.Warn("failed to invalidate monthly attendance cache", "user_id", userID, "error", err)
		}
	}

	if s.hub != nil {
		s.hub.Publish(sse.Event{
			Topic: token.CompanyID,
			Event: presence.EventTokenRedeemed,
			Data: presence.RedeemedEvent{
				TokenID:      token.ID,
				Type:         string(eventType),
				DepartmentID: token.DepartmentID,
				UserID:       userID,
				AttendanceID: record.ID,
				Status:       string(status),
				RedeemedAt:   now,
			},
		})
	}

	return presence.RedeemResponse{
		Type:         string(eventType),
		AttendanceID: record.ID,
		Status:       string(status),
		Message:      redeemMessage(eventType),
	}, nil
}

// checkValidity runs the gate in order: used, expired, department, prior check-in.
func (s *PresenceServiceImpl) checkValidity(ctx context.Context, userID int64, token presence.Token, now, today time.Time) error {
	used, err := s.TransactionRepository.ExistsForToken(ctx, token.ID)
	if err != nil {
		return fmt.Errorf("failed to check token usage: %w", err)
	}
	if used {
		return presence.ErrTokenAlreadyUsed
	}

	if token.Expired(now) {
		return presence.ErrTokenExpired
	}

	member, err := s.EmploymentRepository.IsInDepartment(ctx, userID, token.DepartmentID)
	if err != nil {
		return fmt.Errorf("failed to check department membership: %w", err)
	}
	if !member {
		return presence.ErrNotInDepartment
	}

	if token.Type != attendance.EventOut {
		return nil
	}
	existing, err := s.AttendanceRepository.GetByUserAndDay(ctx, userID, today)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return presence.ErrCheckInRequired
		}
		return fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if !existing.HasCheckedIn() {
		return presence.ErrCheckInRequired
	}
	return nil
}

// writeAttendance creates today's record or patches the event's side of it.
// Must run inside a transaction; the record stays locked until it ends.
func (s *PresenceServiceImpl) writeAttendance(ctx context.Context, ev attendance.Event, today time.Time) (attendance.Attendance, error) {
	existing, err := s.AttendanceRepository.GetByUserAndDayForUpdate(ctx, ev.UserID, today)
	if err == nil {
		return s.patchAttendance(ctx, existing, ev)
	}
	if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.Attendance{}, err
	}
	if ev.Type == attendance.EventOut {
		return attendance.Attendance{}, presence.ErrCheckInRequired
	}

	created, ok, err := s.AttendanceRepository.CreateIfAbsent(ctx, attendance.NewFromEvent(ev))
	if err != nil {
		return attendance.Attendance{}, err
	}
	if ok {
		return created, nil
	}

	// A concurrent request created the record first.
	existing, err = s.AttendanceRepository.GetByUserAndDayForUpdate(ctx, ev.UserID, today)
	if err != nil {
		return attendance.Attendance{}, err
	}
	return s.patchAttendance(ctx, existing, ev)
}

func (s *PresenceServiceImpl) patchAttendance(ctx context.Context, existing attendance.Attendance, ev attendance.Event) (attendance.Attendance, error) {
	if ev.Type == attendance.EventOut && !existing.HasCheckedIn() {
		return attendance.Attendance{}, presence.ErrCheckInRequired
	}
	existing.Apply(ev)
	if err := s.AttendanceRepository.Update(ctx, existing); err != nil {
		return attendance.Attendance{}, err
	}
	return existing, nil
}

// Issue implements presence.PresenceService.
func (s *PresenceServiceImpl) Issue(ctx context.Context, req presence.IssueTokenRequest) (presence.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return presence.TokenResponse{}, err
	}

	if _, err := s.CompanyRepository.GetDepartment(ctx, req.CompanyID, req.DepartmentID); err != nil {
		return presence.TokenResponse{}, err
	}
	if _, err := s.ShiftRepository.GetByID(ctx, req.CompanyID, req.ShiftID); err != nil {
		return presence.TokenResponse{}, err
	}

	now := s.clock.Now()
	sealed, err := s.sealer.Seal(now)
	if err != nil {
		return presence.TokenResponse{}, fmt.Errorf("failed to seal presence token: %w", err)
	}

	token, err := s.TokenRepository.Create(ctx, presence.Token{
		Type:         attendance.EventType(req.Type),
		Token:        sealed,
		DepartmentID: req.DepartmentID,
		ShiftID:      req.ShiftID,
		ForPresence:  now,
		ExpiresAt:    now.Add(s.tokenTTL),
	})
	if err != nil {
		return presence.TokenResponse{}, err
	}

	return presence.ToTokenResponse(token), nil
}

// QRCode implements presence.PresenceService.
func (s *PresenceServiceImpl) QRCode(ctx context.Context, companyID, id int64) ([]byte, error) {
	token, err := s.TokenRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if token.CompanyID != companyID {
		return nil, presence.ErrTokenNotFound
	}
	if token.Expired(s.clock.Now()) {
		return nil, presence.ErrTokenExpired
	}

	return qrcode.RenderJSON(presence.QRPayload{
		Type:  string(token.Type),
		ID:    token.ID,
		Token: token.Token,
	}, qrcode.DefaultSize)
}

func isBusinessError(err error) bool {
	return errors.Is(err, presence.ErrTokenAlreadyUsed) ||
		errors.Is(err, presence.ErrTokenNotFound) ||
		errors.Is(err, presence.ErrCheckInRequired)
}

func redeemMessage(t attendance.EventType) string {
	if t == attendance.EventOut {
		return "check-out recorded successfully"
	}
	return "check-in recorded successfully"
}

// Subscribe implements presence.PresenceService.
func (s *PresenceServiceImpl) Subscribe(ctx context.Context, companyID int64) (<-chan presence.StreamEvent, func()) {
	out := make(chan presence.StreamEvent, 16)
	if s.hub == nil {
		close(out)
		return out, func() {}
	}

	ch, cleanup := s.hub.Subscribe(companyID)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				data, ok := event.Data.(presence.RedeemedEvent)
				if !ok {
					continue
				}
				select {
				case out <- presence.StreamEvent{Event: event.Event, Data: data}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}
