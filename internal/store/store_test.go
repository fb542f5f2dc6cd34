package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"auth/internal/domain"
	"auth/internal/store"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return st
}

func strPtr(s string) *string { return &s }

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	first := &domain.User{Email: strPtr("a@b.com"), PasswordHash: strPtr("h"), AuthType: domain.AuthTypeEmail, CreatedAt: time.Now().UTC()}
	if err := st.Users().Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second := &domain.User{Email: strPtr("a@b.com"), PasswordHash: strPtr("h"), AuthType: domain.AuthTypeEmail, CreatedAt: time.Now().UTC()}
	if err := st.Users().Create(ctx, second); !errors.Is(err, store.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	got, err := st.Users().GetByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("expected first user, got %s", got.ID)
	}

	if _, err := st.Users().GetByEmail(ctx, "nobody@b.com"); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestCreateOrGetByPhoneConvergesOnOneRow(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	u1, created, err := st.Users().CreateOrGetByPhone(ctx, &domain.User{
		PhoneNumber: strPtr("+15551234567"),
		Name:        "Ada",
		AuthType:    domain.AuthTypePhone,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if !created {
		t.Fatalf("expected first call to create the user")
	}

	u2, created, err := st.Users().CreateOrGetByPhone(ctx, &domain.User{
		PhoneNumber: strPtr("+15551234567"),
		Name:        "Someone else",
		AuthType:    domain.AuthTypePhone,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatalf("expected second call to reuse the existing user")
	}
	if u2.ID != u1.ID || u2.Name != "Ada" {
		t.Fatalf("expected existing user %s/Ada, got %s/%s", u1.ID, u2.ID, u2.Name)
	}

	var count int64
	if err := st.DB.Model(&domain.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestOtpConsumeIsSingleUse(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	rec := &domain.OtpRecord{PhoneNumber: "+15551234567", Code: "123456"}
	if err := st.Otps().Create(ctx, rec); err != nil {
		t.Fatalf("create otp: %v", err)
	}

	ok, err := st.Otps().Consume(ctx, "+15551234567", "654321", time.Time{})
	if err != nil || ok {
		t.Fatalf("wrong code: ok=%v err=%v", ok, err)
	}
	ok, err = st.Otps().Consume(ctx, "+15550000000", "123456", time.Time{})
	if err != nil || ok {
		t.Fatalf("wrong phone: ok=%v err=%v", ok, err)
	}

	ok, err = st.Otps().Consume(ctx, "+15551234567", "123456", time.Time{})
	if err != nil || !ok {
		t.Fatalf("first consume: ok=%v err=%v", ok, err)
	}
	ok, err = st.Otps().Consume(ctx, "+15551234567", "123456", time.Time{})
	if err != nil || ok {
		t.Fatalf("second consume should fail: ok=%v err=%v", ok, err)
	}
}

func TestOtpConsumeIgnoresRecordsOlderThanCutoff(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	sent := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if err := st.Otps().Create(ctx, &domain.OtpRecord{PhoneNumber: "+1555", Code: "111111", SentAt: sent}); err != nil {
		t.Fatalf("create otp: %v", err)
	}

	ok, err := st.Otps().Consume(ctx, "+1555", "111111", sent.Add(time.Minute))
	if err != nil || ok {
		t.Fatalf("expired record must not match: ok=%v err=%v", ok, err)
	}
	ok, err = st.Otps().Consume(ctx, "+1555", "111111", sent.Add(-time.Minute))
	if err != nil || !ok {
		t.Fatalf("fresh record must match: ok=%v err=%v", ok, err)
	}
}

func TestCountRecentFailures(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	attempts := []domain.LoginAttempt{
		{Email: strPtr("a@b.com"), IPAddress: "10.0.0.1", Success: false, AttemptTime: now.Add(-1 * time.Minute)},
		{Email: strPtr("a@b.com"), IPAddress: "10.0.0.2", Success: false, AttemptTime: now.Add(-2 * time.Minute)},
		{Email: strPtr("a@b.com"), IPAddress: "10.0.0.1", Success: true, AttemptTime: now.Add(-3 * time.Minute)},
		{Email: strPtr("a@b.com"), IPAddress: "10.0.0.1", Success: false, AttemptTime: now.Add(-30 * time.Minute)},
		{PhoneNumber: strPtr("+1555"), IPAddress: "10.0.0.3", Success: false, AttemptTime: now.Add(-4 * time.Minute)},
		{Email: strPtr("other@b.com"), IPAddress: "10.0.0.3", Success: false, AttemptTime: now.Add(-5 * time.Minute)},
	}
	for i := range attempts {
		if err := st.LoginAttempts().Create(ctx, &attempts[i]); err != nil {
			t.Fatalf("create attempt %d: %v", i, err)
		}
	}

	since := now.Add(-15 * time.Minute)
	cases := []struct {
		name       string
		identifier string
		ip         string
		want       int64
	}{
		{name: "by email", identifier: "a@b.com", want: 2},
		{name: "by phone", identifier: "+1555", want: 1},
		{name: "by ip only", ip: "10.0.0.3", want: 2},
		{name: "email or shared ip", identifier: "a@b.com", ip: "10.0.0.3", want: 4},
		{name: "unknown", identifier: "x@y.com", ip: "192.0.2.1", want: 0},
		{name: "blank", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := st.LoginAttempts().CountRecentFailures(ctx, tc.identifier, tc.ip, since)
			if err != nil {
				t.Fatalf("count: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestUserAppUpsertRefreshesTimestamp(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	user := &domain.User{PhoneNumber: strPtr("+1555"), AuthType: domain.AuthTypePhone, CreatedAt: time.Now().UTC()}
	if err := st.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	first := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	if err := st.UserApps().Upsert(ctx, user.ID, "web", first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := st.UserApps().Upsert(ctx, user.ID, "web", second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	apps, err := st.UserApps().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(apps))
	}
	if !apps[0].UpdatedAt.Equal(second) {
		t.Fatalf("expected updated_at %v, got %v", second, apps[0].UpdatedAt)
	}
	if !apps[0].CreatedAt.Equal(first) {
		t.Fatalf("expected created_at to stay %v, got %v", first, apps[0].CreatedAt)
	}

	if err := st.UserApps().Upsert(ctx, user.ID, "ios", second); err != nil {
		t.Fatalf("other app upsert: %v", err)
	}
	apps, err = st.UserApps().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected two rows, got %d", len(apps))
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.Users().Create(ctx, &domain.User{PhoneNumber: strPtr("+1555"), AuthType: domain.AuthTypePhone, CreatedAt: time.Now().UTC()}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := st.Users().GetByPhone(ctx, "+1555"); !errors.Is(err, store.ErrRecordNotFound) {
		t.Fatalf("expected rollback, got %v", err)
	}
}
