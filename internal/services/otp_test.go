package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/laporwarga/backend/internal/config"
)

func TestDBOTPStore_CheckConsumesCode(t *testing.T) {
	store := NewDBOTPStore(newTestDB(t))
	ctx := context.Background()

	if err := store.Put(ctx, "Warga@Example.com", "123456", time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Check(ctx, "warga@example.com", "123456", 5); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if err := store.Check(ctx, "warga@example.com", "123456", 5); !errors.Is(err, ErrOTPExpired) {
		t.Errorf("second Check() error = %v, expected ErrOTPExpired", err)
	}
}

func TestDBOTPStore_PutReplacesPending(t *testing.T) {
	store := NewDBOTPStore(newTestDB(t))
	ctx := context.Background()

	store.Put(ctx, "warga@example.com", "111111", time.Minute)
	store.Put(ctx, "warga@example.com", "222222", time.Minute)

	if err := store.Check(ctx, "warga@example.com", "111111", 5); !errors.Is(err, ErrOTPInvalid) {
		t.Errorf("old code error = %v, expected ErrOTPInvalid", err)
	}
	if err := store.Check(ctx, "warga@example.com", "222222", 5); err != nil {
		t.Errorf("new code error = %v", err)
	}
}

func TestDBOTPStore_Expiry(t *testing.T) {
	store := NewDBOTPStore(newTestDB(t))
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	store.Put(ctx, "warga@example.com", "123456", time.Minute)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	if err := store.Check(ctx, "warga@example.com", "123456", 5); !errors.Is(err, ErrOTPExpired) {
		t.Errorf("Check() error = %v, expected ErrOTPExpired", err)
	}

	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("PurgeExpired() = %d, expected 1", purged)
	}
}

func TestDBOTPStore_MaxAttempts(t *testing.T) {
	store := NewDBOTPStore(newTestDB(t))
	ctx := context.Background()
	store.Put(ctx, "warga@example.com", "123456", time.Minute)

	for i := 0; i < 3; i++ {
		if err := store.Check(ctx, "warga@example.com", "999999", 3); !errors.Is(err, ErrOTPInvalid) {
			t.Fatalf("attempt %d error = %v, expected ErrOTPInvalid", i+1, err)
		}
	}
	if err := store.Check(ctx, "warga@example.com", "123456", 3); !errors.Is(err, ErrOTPTooManyAttempts) {
		t.Errorf("Check() after limit error = %v, expected ErrOTPTooManyAttempts", err)
	}
}

func TestDBOTPStore_Reserve(t *testing.T) {
	store := NewDBOTPStore(newTestDB(t))
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	if err := store.Reserve(ctx, "warga@example.com", time.Minute); err != nil {
		t.Fatalf("Reserve() with no code error = %v", err)
	}
	store.Put(ctx, "warga@example.com", "123456", 10*time.Minute)

	if err := store.Reserve(ctx, "warga@example.com", time.Minute); !errors.Is(err, ErrOTPCooldown) {
		t.Errorf("Reserve() inside cooldown error = %v, expected ErrOTPCooldown", err)
	}

	store.now = func() time.Time { return now.Add(61 * time.Second) }
	if err := store.Reserve(ctx, "warga@example.com", time.Minute); err != nil {
		t.Errorf("Reserve() after cooldown error = %v", err)
	}
}

func TestHashOTP_NormalizesEmail(t *testing.T) {
	if hashOTP(" Warga@Example.com", "123456") != hashOTP("warga@example.com", "123456") {
		t.Error("hashOTP should ignore case and surrounding space in the email")
	}
	if hashOTP("a@example.com", "123456") == hashOTP("b@example.com", "123456") {
		t.Error("hashOTP should bind the code to the email")
	}
}

func TestOTPKeys(t *testing.T) {
	if got := otpKey("Warga@Example.com"); got != "lapor:otp:warga@example.com" {
		t.Errorf("otpKey() = %q", got)
	}
	if got := cooldownKey("warga@example.com"); got != "lapor:otp:cooldown:warga@example.com" {
		t.Errorf("cooldownKey() = %q", got)
	}
}

func TestNewRedisClient_Disabled(t *testing.T) {
	if rdb := NewRedisClient(context.Background(), &config.RedisConfig{}); rdb != nil {
		t.Error("disabled redis should return nil")
	}
	if _, ok := NewOTPStore(newTestDB(t), nil).(*DBOTPStore); !ok {
		t.Error("NewOTPStore without redis should use the database")
	}
}

// Runs against a real server only when LAPOR_TEST_REDIS holds its address.
func TestRedisOTPStore(t *testing.T) {
	addr := os.Getenv("LAPOR_TEST_REDIS")
	if addr == "" {
		t.Skip("LAPOR_TEST_REDIS not set")
	}
	ctx := context.Background()
	rdb := NewRedisClient(ctx, &config.RedisConfig{Enabled: true, Addr: addr})
	if rdb == nil {
		t.Fatalf("redis at %s unreachable", addr)
	}
	defer rdb.Close()

	email := "redis-" + time.Now().Format("150405.000") + "@example.com"
	defer rdb.Del(ctx, otpKey(email), cooldownKey(email))
	store := NewRedisOTPStore(rdb)

	if err := store.Reserve(ctx, email, time.Minute); err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}
	if err := store.Reserve(ctx, email, time.Minute); !errors.Is(err, ErrOTPCooldown) {
		t.Errorf("second Reserve() error = %v, expected ErrOTPCooldown", err)
	}

	store.Put(ctx, email, "123456", time.Minute)
	if err := store.Check(ctx, email, "000000", 5); !errors.Is(err, ErrOTPInvalid) {
		t.Errorf("wrong code error = %v", err)
	}
	if err := store.Check(ctx, email, "123456", 5); err != nil {
		t.Errorf("Check() error = %v", err)
	}
	if err := store.Check(ctx, email, "123456", 5); !errors.Is(err, ErrOTPExpired) {
		t.Errorf("reused code error = %v, expected ErrOTPExpired", err)
	}
}
