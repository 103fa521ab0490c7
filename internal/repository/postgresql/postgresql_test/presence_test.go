package postgresql_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/domain/presence"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
	"github.com/chocoalano/esas-api/internal/pkg/seal"
	"github.com/chocoalano/esas-api/internal/repository/postgresql"
	presenceService "github.com/chocoalano/esas-api/internal/service/presence"
)

var jakarta = time.FixedZone("WIB", 7*3600)

func createToken(t *testing.T, s *TestDatabaseSetup, org seed, eventType attendance.EventType, token string, expiresAt time.Time) presence.Token {
	t.Helper()
	created, err := postgresql.NewPresenceTokenRepository(s.DB).Create(context.Background(), presence.Token{
		Type:         eventType,
		Token:        token,
		DepartmentID: org.DepartmentID,
		ShiftID:      org.ShiftID,
		ForPresence:  time.Now(),
		ExpiresAt:    expiresAt,
	})
	require.NoError(t, err)
	return created
}

func TestPresenceTokenRepository_GetByIDAndTypeJoinsShift(t *testing.T) {
	s := NewTestDatabase(t)
	org := s.SeedOrganization(t, "09:00:00", 42)
	tok := createToken(t, s, org, attendance.EventIn, "tok-join", time.Now().Add(time.Minute))
	repo := postgresql.NewPresenceTokenRepository(s.DB)
	ctx := context.Background()

	got, err := repo.GetByIDAndType(ctx, tok.ID, attendance.EventIn)
	require.NoError(t, err)
	assert.Equal(t, "tok-join", got.Token)
	assert.Equal(t, "Engineering", got.DepartmentName)
	assert.Equal(t, clock.TimeOfDay{Hour: 9}, got.ShiftStart)
	assert.Equal(t, org.CompanyID, got.CompanyID)

	_, err = repo.GetByIDAndType(ctx, tok.ID, attendance.EventOut)
	assert.ErrorIs(t, err, presence.ErrTokenNotFound)
}

func TestPresenceTransactionRepository_OnePerToken(t *testing.T) {
	s := NewTestDatabase(t)
	org := s.SeedOrganization(t, "09:00:00", 42)
	tok := createToken(t, s, org, attendance.EventIn, "tok-once", time.Now().Add(time.Minute))
	ctx := context.Background()

	att, created, err := postgresql.NewAttendanceRepository(s.DB).CreateIfAbsent(ctx, attendance.NewFromEvent(attendance.Event{
		Type: attendance.EventIn, UserID: 42, At: time.Now().In(jakarta), Status: attendance.StatusNormal, Method: attendance.EntryQRCode,
	}))
	require.NoError(t, err)
	require.True(t, created)

	txRepo := postgresql.NewPresenceTransactionRepository(s.DB)
	_, err = txRepo.Create(ctx, presence.Transaction{TokenID: tok.ID, AttendanceID: att.ID, Token: tok.Token})
	require.NoError(t, err)

	_, err = txRepo.Create(ctx, presence.Transaction{TokenID: tok.ID, AttendanceID: att.ID, Token: tok.Token})
	assert.ErrorIs(t, err, presence.ErrTokenAlreadyUsed)

	used, err := txRepo.ExistsForToken(ctx, tok.ID)
	require.NoError(t, err)
	assert.True(t, used)
}

func TestAttendanceRepository_OneRecordPerUserPerDay(t *testing.T) {
	s := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(s.DB)
	ctx := context.Background()
	morning := time.Date(2025, 5, 2, 8, 55, 0, 0, jakarta)

	first, created, err := repo.CreateIfAbsent(ctx, attendance.NewFromEvent(attendance.Event{
		Type: attendance.EventIn, UserID: 42, At: morning, Status: attendance.StatusNormal, Latitude: -6.2, Longitude: 106.8, Method: attendance.EntryQRCode,
	}))
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = repo.CreateIfAbsent(ctx, attendance.NewFromEvent(attendance.Event{
		Type: attendance.EventIn, UserID: 42, At: morning.Add(time.Hour), Status: attendance.StatusLate, Method: attendance.EntryQRCode,
	}))
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.GetByUserAndDay(ctx, 42, clock.DateOf(morning))
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, clock.TimeOfDay{Hour: 8, Minute: 55}, *got.TimeIn)
	assert.Equal(t, attendance.StatusNormal, got.StatusIn)
	assert.Equal(t, attendance.EntryQRCode, *got.TypeIn)
	assert.Equal(t, -6.2, *got.LatIn)
	assert.Nil(t, got.TimeOut)

	got.Apply(attendance.Event{
		Type: attendance.EventOut, UserID: 42, At: morning.Add(8 * time.Hour), Status: attendance.StatusNormal, Method: attendance.EntryQRCode,
	})
	require.NoError(t, repo.Update(ctx, got))

	list, err := repo.ListByUserAndMonth(ctx, 42,
		time.Date(2025, 5, 1, 0, 0, 0, 0, jakarta), time.Date(2025, 6, 1, 0, 0, 0, 0, jakarta))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, clock.TimeOfDay{Hour: 16, Minute: 55}, *list[0].TimeOut)
	assert.Equal(t, clock.TimeOfDay{Hour: 8, Minute: 55}, *list[0].TimeIn)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	s := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(s.DB)
	ctx := context.Background()
	day := time.Date(2025, 5, 2, 8, 0, 0, 0, jakarta)
	boom := errors.New("boom")

	err := postgresql.NewTransactor(s.DB).WithinTransaction(ctx, func(ctx context.Context) error {
		_, _, err := repo.CreateIfAbsent(ctx, attendance.NewFromEvent(attendance.Event{
			Type: attendance.EventIn, UserID: 7, At: day, Status: attendance.StatusNormal, Method: attendance.EntryQRCode,
		}))
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetByUserAndDay(ctx, 7, clock.DateOf(day))
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestPresenceTokenRepository_DeleteExpiredUnused(t *testing.T) {
	s := NewTestDatabase(t)
	org := s.SeedOrganization(t, "09:00:00", 42)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	stale := createToken(t, s, org, attendance.EventIn, "stale", old)
	redeemed := createToken(t, s, org, attendance.EventIn, "redeemed", old)
	fresh := createToken(t, s, org, attendance.EventIn, "fresh", time.Now().Add(time.Minute))

	att, _, err := postgresql.NewAttendanceRepository(s.DB).CreateIfAbsent(ctx, attendance.NewFromEvent(attendance.Event{
		Type: attendance.EventIn, UserID: 42, At: old.In(jakarta), Status: attendance.StatusNormal, Method: attendance.EntryQRCode,
	}))
	require.NoError(t, err)
	_, err = postgresql.NewPresenceTransactionRepository(s.DB).Create(ctx, presence.Transaction{
		TokenID: redeemed.ID, AttendanceID: att.ID, Token: redeemed.Token,
	})
	require.NoError(t, err)

	repo := postgresql.NewPresenceTokenRepository(s.DB)
	deleted, err := repo.DeleteExpiredUnused(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, presence.ErrTokenNotFound)
	_, err = repo.GetByID(ctx, redeemed.ID)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, fresh.ID)
	assert.NoError(t, err)
}

func newPresenceService(t *testing.T, s *TestDatabaseSetup) presence.PresenceService {
	sealer, err := seal.New("integration-secret")
	require.NoError(t, err)

	return presenceService.NewPresenceService(
		postgresql.NewTransactor(s.DB),
		postgresql.NewPresenceTokenRepository(s.DB),
		postgresql.NewPresenceTransactionRepository(s.DB),
		postgresql.NewAttendanceRepository(s.DB),
		postgresql.NewEmploymentRepository(s.DB),
		postgresql.NewCompanyRepository(s.DB),
		postgresql.NewShiftRepository(s.DB),
		postgresql.NewScheduleRepository(s.DB),
		clock.New(jakarta),
		sealer,
		nil,
		nil,
		10*time.Second,
	)
}

func TestRedeem_ConcurrentRequestsConsumeTokenOnce(t *testing.T) {
	s := NewTestDatabase(t)
	org := s.SeedOrganization(t, "23:59:59", 42)
	tok := createToken(t, s, org, attendance.EventIn, "tok-race", time.Now().Add(time.Minute))
	svc := newPresenceService(t, s)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(context.Background(), 42, presence.RedeemRequest{Type: "in", ID: tok.ID, Token: tok.Token})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	for _, err := range failures {
		assert.ErrorIs(t, err, presence.ErrTokenAlreadyUsed)
	}

	var records int
	require.NoError(t, s.DB.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM user_attendances WHERE user_id = 42`).Scan(&records))
	assert.Equal(t, 1, records)
}

func TestRedeem_ConcurrentCheckInsKeepOneRecordPerDay(t *testing.T) {
	s := NewTestDatabase(t)
	org := s.SeedOrganization(t, "23:59:59", 42)
	svc := newPresenceService(t, s)

	tokens := make([]presence.Token, 4)
	for i := range tokens {
		tokens[i] = createToken(t, s, org, attendance.EventIn, fmt.Sprintf("tok-%d", i), time.Now().Add(time.Minute))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(tokens))
	for i, tok := range tokens {
		wg.Add(1)
		go func(i int, tok presence.Token) {
			defer wg.Done()
			_, errs[i] = svc.Redeem(context.Background(), 42, presence.RedeemRequest{Type: "in", ID: tok.ID, Token: tok.Token})
		}(i, tok)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	var records, transactions int
	require.NoError(t, s.DB.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM user_attendances WHERE user_id = 42`).Scan(&records))
	require.NoError(t, s.DB.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM qr_presence_transactions`).Scan(&transactions))
	assert.Equal(t, 1, records)
	assert.Equal(t, len(tokens), transactions)
}
