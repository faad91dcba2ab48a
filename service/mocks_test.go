package service

import (
	"context"
	"database/sql"
	"fruit-api/model"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// fakeResetTokenRepo is an in-memory IResetTokenRepository. The transaction
// argument is ignored; sqlmock covers the transaction boundaries.
type fakeResetTokenRepo struct {
	mu      sync.Mutex
	records map[string]*model.ResetToken
	getErr  error
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{records: make(map[string]*model.ResetToken)}
}

func (f *fakeResetTokenRepo) put(rec model.ResetToken) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.Token] = &rec
}

func (f *fakeResetTokenRepo) get(token string) (model.ResetToken, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[token]
	if !ok {
		return model.ResetToken{}, false
	}
	return *rec, true
}

func (f *fakeResetTokenRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeResetTokenRepo) Create(_ context.Context, _ *sql.Tx, token *model.ResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.CreatedAt = time.Now()
	rec := *token
	f.records[token.Token] = &rec
	return nil
}

func (f *fakeResetTokenRepo) GetForUpdate(_ context.Context, _ *sql.Tx, token string) (*model.ResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeResetTokenRepo) IncrementFailedAttempts(_ context.Context, _ *sql.Tx, token string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[token]
	if !ok {
		return 0, sql.ErrNoRows
	}
	rec.FailedAttempts++
	rec.AttemptCount++
	return rec.FailedAttempts, nil
}

func (f *fakeResetTokenRepo) IncrementAttemptCount(_ context.Context, _ *sql.Tx, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[token]; ok {
		rec.AttemptCount++
	}
	return nil
}

func (f *fakeResetTokenRepo) Delete(_ context.Context, _ *sql.Tx, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, token)
	return nil
}

func (f *fakeResetTokenRepo) DeleteByUserID(_ context.Context, _ *sql.Tx, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, rec := range f.records {
		if rec.UserID == userID {
			delete(f.records, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeResetTokenRepo) DeleteExpired(_ context.Context, _ *sql.Tx, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, rec := range f.records {
		if rec.ExpiresAt.Before(now) {
			delete(f.records, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeResetTokenRepo) DeleteByToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, token)
	return nil
}

// fakeUserRepo is an in-memory IUserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) add(email, hashedPassword string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{ID: uuid.New(), Email: email, HashedPassword: hashedPassword, CreatedAt: time.Now()}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) remove(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

func (f *fakeUserRepo) hash(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].HashedPassword
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uuid.New()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, _ *sql.Tx, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, _ *sql.Tx, id uuid.UUID, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.HashedPassword = hashedPassword
	return nil
}

// mockUserRepo is a testify mock of IUserRepository.
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// Unused methods needed to satisfy the interface
func (m *mockUserRepo) GetUserByID(context.Context, *sql.Tx, uuid.UUID) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) UpdatePassword(context.Context, *sql.Tx, uuid.UUID, string) error { return nil }

// mockNotifier is a testify mock of Notifier.
type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendPasswordReset(ctx context.Context, to, resetLink string, expiresIn time.Duration) error {
	args := m.Called(ctx, to, resetLink, expiresIn)
	return args.Error(0)
}

// mockLimiter is a testify mock of RequestLimiter.
type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) CheckRequest(ctx context.Context, identifier string) error {
	args := m.Called(ctx, identifier)
	return args.Error(0)
}

// testClock is a settable time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
