package presence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/attendance"
	"github.com/chocoalano/esas-api/internal/domain/company"
	"github.com/chocoalano/esas-api/internal/domain/presence"
	"github.com/chocoalano/esas-api/internal/domain/schedule"
)

// store is an in-memory stand-in for the PostgreSQL tables. txMu serializes
// units of work the way row locks would; mu guards single operations.
type store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID       int64
	tokens       map[int64]presence.Token
	transactions map[int64]presence.Transaction
	attendances  map[string]attendance.Attendance
	members      map[[2]int64]bool
	companies    map[int64]company.Company
	departments  map[int64]company.Department
	shifts       map[int64]schedule.Shift
	schedules    map[string]int64

	createTransactionErr error
}

func newStore() *store {
	return &store{
		tokens:       map[int64]presence.Token{},
		transactions: map[int64]presence.Transaction{},
		attendances:  map[string]attendance.Attendance{},
		members:      map[[2]int64]bool{},
		companies:    map[int64]company.Company{},
		departments:  map[int64]company.Department{},
		shifts:       map[int64]schedule.Shift{},
		schedules:    map[string]int64{},
	}
}

func dayKey(userID int64, day time.Time) string {
	return fmt.Sprintf("%d|%s", userID, day.Format("2006-01-02"))
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) attendanceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attendances)
}

func (s *store) attendanceFor(userID int64, day time.Time) (attendance.Attendance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attendances[dayKey(userID, day)]
	return a, ok
}

func (s *store) transactionFor(tokenID int64) (presence.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[tokenID]
	return t, ok
}

// transactor restores the attendance and transaction tables when fn fails.
type transactor struct{ *store }

func (t transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()

	t.mu.Lock()
	attendances := make(map[string]attendance.Attendance, len(t.attendances))
	for k, v := range t.attendances {
		attendances[k] = v
	}
	transactions := make(map[int64]presence.Transaction, len(t.transactions))
	for k, v := range t.transactions {
		transactions[k] = v
	}
	t.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.mu.Lock()
		t.attendances = attendances
		t.transactions = transactions
		t.mu.Unlock()
		return err
	}
	return nil
}

type tokenRepo struct{ *store }

func (r tokenRepo) Create(ctx context.Context, token presence.Token) (presence.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.id()
	r.tokens[token.ID] = token
	return token, nil
}

func (r tokenRepo) GetByIDAndType(ctx context.Context, id int64, eventType attendance.EventType) (presence.Token, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return presence.Token{}, err
	}
	if t.Type != eventType {
		return presence.Token{}, presence.ErrTokenNotFound
	}
	return t, nil
}

func (r tokenRepo) GetByID(ctx context.Context, id int64) (presence.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return presence.Token{}, presence.ErrTokenNotFound
	}
	return t, nil
}

func (r tokenRepo) LockByID(ctx context.Context, id int64) error {
	_, err := r.GetByID(ctx, id)
	return err
}

func (r tokenRepo) DeleteExpiredUnused(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if _, used := r.transactions[id]; !used && t.ExpiresAt.Before(cutoff) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

type transactionRepo struct{ *store }

func (r transactionRepo) ExistsForToken(ctx context.Context, tokenID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.transactions[tokenID]
	return ok, nil
}

func (r transactionRepo) Create(ctx context.Context, tx presence.Transaction) (presence.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createTransactionErr != nil {
		return presence.Transaction{}, r.createTransactionErr
	}
	if _, ok := r.transactions[tx.TokenID]; ok {
		return presence.Transaction{}, presence.ErrTokenAlreadyUsed
	}
	tx.ID = r.id()
	r.transactions[tx.TokenID] = tx
	return tx, nil
}

type attendanceRepo struct{ *store }

func (r attendanceRepo) GetByUserAndDay(ctx context.Context, userID int64, day time.Time) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attendances[dayKey(userID, day)]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r attendanceRepo) GetByUserAndDayForUpdate(ctx context.Context, userID int64, day time.Time) (attendance.Attendance, error) {
	return r.GetByUserAndDay(ctx, userID, day)
}

func (r attendanceRepo) CreateIfAbsent(ctx context.Context, a attendance.Attendance) (attendance.Attendance, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(a.UserID, a.WorkDay)
	if _, ok := r.attendances[key]; ok {
		return attendance.Attendance{}, false, nil
	}
	a.ID = r.id()
	r.attendances[key] = a
	return a, true, nil
}

func (r attendanceRepo) Update(ctx context.Context, a attendance.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(a.UserID, a.WorkDay)
	if existing, ok := r.attendances[key]; !ok || existing.ID != a.ID {
		return attendance.ErrAttendanceNotFound
	}
	r.attendances[key] = a
	return nil
}

func (r attendanceRepo) ListByUserAndMonth(ctx context.Context, userID int64, from, to time.Time) ([]attendance.Attendance, error) {
	return nil, nil
}

type employmentRepo struct{ *store }

func (r employmentRepo) IsInDepartment(ctx context.Context, userID, departmentID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members[[2]int64{userID, departmentID}], nil
}

type companyRepo struct{ *store }

func (r companyRepo) GetByID(ctx context.Context, id int64) (company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func (r companyRepo) GetDepartment(ctx context.Context, companyID, departmentID int64) (company.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.departments[departmentID]
	if !ok || d.CompanyID != companyID {
		return company.Department{}, company.ErrDepartmentNotFound
	}
	return d, nil
}

type shiftRepo struct{ *store }

func (r shiftRepo) GetByID(ctx context.Context, companyID, shiftID int64) (schedule.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[shiftID]
	if !ok || s.CompanyID != companyID {
		return schedule.Shift{}, schedule.ErrShiftNotFound
	}
	return s, nil
}

type scheduleRepo struct{ *store }

func (r scheduleRepo) FindIDForDay(ctx context.Context, userID int64, day time.Time) (*int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.schedules[dayKey(userID, day)]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

type invalidations struct {
	mu    sync.Mutex
	calls []string
}

func (i *invalidations) Invalidate(ctx context.Context, userID int64, day time.Time) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls = append(i.calls, dayKey(userID, day))
	return nil
}
