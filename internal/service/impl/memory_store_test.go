package impl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auth/internal/domain"
	"auth/internal/store"

	"github.com/google/uuid"
)

type appKey struct {
	userID  uuid.UUID
	appName string
}

type memoryState struct {
	users    map[uuid.UUID]domain.User
	otps     []domain.OtpRecord
	attempts []domain.LoginAttempt
	apps     map[appKey]domain.UserApp
}

func (s memoryState) clone() memoryState {
	users := make(map[uuid.UUID]domain.User, len(s.users))
	for id, u := range s.users {
		users[id] = u
	}
	apps := make(map[appKey]domain.UserApp, len(s.apps))
	for k, v := range s.apps {
		apps[k] = v
	}
	return memoryState{
		users:    users,
		otps:     append([]domain.OtpRecord(nil), s.otps...),
		attempts: append([]domain.LoginAttempt(nil), s.attempts...),
		apps:     apps,
	}
}

// memoryStore is an in-memory dataStore. WithTx holds the lock for the
// whole callback and restores a snapshot when it fails.
type memoryStore struct {
	mu    sync.Mutex
	state memoryState

	upsertErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{state: memoryState{
		users: make(map[uuid.UUID]domain.User),
		apps:  make(map[appKey]domain.UserApp),
	}}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(memoryView{store: m, inTx: true}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *memoryStore) Users() userStore { return memoryView{store: m}.Users() }

func (m *memoryStore) Otps() otpStore { return memoryView{store: m}.Otps() }

func (m *memoryStore) LoginAttempts() loginAttemptStore { return memoryView{store: m}.LoginAttempts() }

func (m *memoryStore) UserApps() userAppStore { return memoryView{store: m}.UserApps() }

func (m *memoryStore) snapshot() memoryState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

func (m *memoryStore) userCount() int { return len(m.snapshot().users) }

func (m *memoryStore) attemptCount() int { return len(m.snapshot().attempts) }

func (m *memoryStore) userByEmail(email string) (domain.User, bool) {
	for _, u := range m.snapshot().users {
		if u.Email != nil && *u.Email == email {
			return u, true
		}
	}
	return domain.User{}, false
}

func (m *memoryStore) appsFor(userID uuid.UUID) []domain.UserApp {
	var out []domain.UserApp
	for k, v := range m.snapshot().apps {
		if k.userID == userID {
			out = append(out, v)
		}
	}
	return out
}

type memoryView struct {
	store *memoryStore
	inTx  bool
}

func (v memoryView) do(fn func(s *memoryState) error) error {
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(&v.store.state)
}

func (v memoryView) Users() userStore { return memoryUserStore{v} }

func (v memoryView) Otps() otpStore { return memoryOtpStore{v} }

func (v memoryView) LoginAttempts() loginAttemptStore { return memoryAttemptStore{v} }

func (v memoryView) UserApps() userAppStore { return memoryUserAppStore{v} }

type memoryUserStore struct{ memoryView }

func (s memoryUserStore) Create(ctx context.Context, usr *domain.User) error {
	return s.do(func(st *memoryState) error { return insertUser(st, usr) })
}

func insertUser(st *memoryState, usr *domain.User) error {
	for _, u := range st.users {
		if usr.Email != nil && u.Email != nil && *u.Email == *usr.Email {
			return store.ErrDuplicateKey
		}
		if usr.PhoneNumber != nil && u.PhoneNumber != nil && *u.PhoneNumber == *usr.PhoneNumber {
			return store.ErrDuplicateKey
		}
	}
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	st.users[usr.ID] = *usr
	return nil
}

func (s memoryUserStore) CreateOrGetByPhone(ctx context.Context, usr *domain.User) (*domain.User, bool, error) {
	var (
		out     *domain.User
		created bool
	)
	err := s.do(func(st *memoryState) error {
		for _, u := range st.users {
			if u.PhoneNumber != nil && *u.PhoneNumber == *usr.PhoneNumber {
				found := u
				out = &found
				return nil
			}
		}
		if err := insertUser(st, usr); err != nil {
			return err
		}
		out, created = usr, true
		return nil
	})
	return out, created, err
}

func (s memoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := s.do(func(st *memoryState) error {
		u, ok := st.users[id]
		if !ok {
			return store.ErrRecordNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (s memoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := s.do(func(st *memoryState) error {
		for _, u := range st.users {
			if u.Email != nil && *u.Email == email {
				found := u
				out = &found
				return nil
			}
		}
		return store.ErrRecordNotFound
	})
	return out, err
}

func (s memoryUserStore) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	return s.do(func(st *memoryState) error {
		u, ok := st.users[userID]
		if !ok {
			return store.ErrRecordNotFound
		}
		u.PasswordHash = &hash
		st.users[userID] = u
		return nil
	})
}

type memoryOtpStore struct{ memoryView }

func (s memoryOtpStore) Create(ctx context.Context, rec *domain.OtpRecord) error {
	return s.do(func(st *memoryState) error {
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		if rec.SentAt.IsZero() {
			rec.SentAt = time.Now().UTC()
		}
		st.otps = append(st.otps, *rec)
		return nil
	})
}

func (s memoryOtpStore) Consume(ctx context.Context, phone, code string, notBefore time.Time) (bool, error) {
	var matched bool
	err := s.do(func(st *memoryState) error {
		for i := range st.otps {
			rec := &st.otps[i]
			if rec.PhoneNumber != phone || rec.Code != code || rec.Verified {
				continue
			}
			if !notBefore.IsZero() && rec.SentAt.Before(notBefore) {
				continue
			}
			rec.Verified = true
			matched = true
		}
		return nil
	})
	return matched, err
}

type memoryAttemptStore struct{ memoryView }

func (s memoryAttemptStore) Create(ctx context.Context, a *domain.LoginAttempt) error {
	return s.do(func(st *memoryState) error {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		st.attempts = append(st.attempts, *a)
		return nil
	})
}

func (s memoryAttemptStore) CountRecentFailures(ctx context.Context, identifier, ip string, since time.Time) (int64, error) {
	var n int64
	err := s.do(func(st *memoryState) error {
		for _, a := range st.attempts {
			if a.Success || !a.AttemptTime.After(since) {
				continue
			}
			byID := identifier != "" &&
				((a.Email != nil && *a.Email == identifier) || (a.PhoneNumber != nil && *a.PhoneNumber == identifier))
			byIP := ip != "" && a.IPAddress == ip
			if byID || byIP {
				n++
			}
		}
		return nil
	})
	return n, err
}

type memoryUserAppStore struct{ memoryView }

func (s memoryUserAppStore) Upsert(ctx context.Context, userID uuid.UUID, appName string, at time.Time) error {
	return s.do(func(st *memoryState) error {
		if s.store.upsertErr != nil {
			return s.store.upsertErr
		}
		key := appKey{userID: userID, appName: appName}
		row, ok := st.apps[key]
		if !ok {
			row = domain.UserApp{UserID: userID, AppName: appName, CreatedAt: at}
		}
		row.UpdatedAt = at
		st.apps[key] = row
		return nil
	})
}

type stubSender struct {
	mu       sync.Mutex
	err      error
	messages []sentSMS
}

type sentSMS struct {
	phone   string
	message string
}

func (s *stubSender) Send(ctx context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, sentSMS{phone: phone, message: message})
	return nil
}

func (s *stubSender) last(t *testing.T) sentSMS {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		t.Fatalf("expected an sms to be sent")
	}
	return s.messages[len(s.messages)-1]
}

type stubTokenService struct {
	err error
}

func (s stubTokenService) Issue(userID domain.UserID, authType domain.AuthType) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "token-" + userID.String(), time.Now().Add(time.Hour), nil
}

func (s stubTokenService) Parse(token string) (domain.UserID, error) {
	return uuid.Nil, errors.New("not implemented")
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fastArgon2 keeps hashing cheap in tests.
var fastArgon2 = Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 32, SaltLen: 16}

type fixture struct {
	store   *memoryStore
	sms     *stubSender
	clock   *fakeClock
	tokens  *TokenServiceImpl
	apps    *AppUsageServiceImpl
	limiter *RateLimiterImpl
	otp     *OTPServiceImpl
	creds   *CredentialServiceImpl
	auth    *AuthServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := newMemoryStore()
	clock := newFakeClock()
	sms := &stubSender{}

	tokens := NewTokenServiceHS256(TokenConfig{Issuer: "auth-test", AccessTTL: 720 * time.Hour, SigningKey: []byte("test-secret")})
	tokens.now = clock.Now
	apps := NewAppUsageServiceImpl(st, "default")
	apps.now = clock.Now
	limiter := NewRateLimiterImpl(st, 15*time.Minute, 5)
	limiter.now = clock.Now

	otp := NewOTPServiceImpl(st, sms, tokens, apps, limiter, 10*time.Minute)
	otp.now = clock.Now
	creds := NewCredentialServiceImpl(st, NewPasswordServiceWithParams(fastArgon2), tokens, apps, limiter, 6)
	creds.now = clock.Now

	return &fixture{
		store:   st,
		sms:     sms,
		clock:   clock,
		tokens:  tokens,
		apps:    apps,
		limiter: limiter,
		otp:     otp,
		creds:   creds,
		auth:    &AuthServiceImpl{Store: st, OTP: otp, Credentials: creds},
	}
}

// issueCode requests an OTP for phone and returns the delivered code.
func (f *fixture) issueCode(t *testing.T, phone string) string {
	t.Helper()
	code, err := f.otp.Issue(context.Background(), phone)
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}
	return code
}
