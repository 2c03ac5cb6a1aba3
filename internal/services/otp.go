package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrOTPInvalid         = errors.New("kode OTP salah")
	ErrOTPExpired         = errors.New("kode OTP kedaluwarsa atau tidak ditemukan")
	ErrOTPTooManyAttempts = errors.New("terlalu banyak percobaan, minta kode baru")
	ErrOTPCooldown        = errors.New("tunggu sebentar sebelum meminta kode baru")
)

// OTPStore keeps pending registration codes. Only hashes are stored.
type OTPStore interface {
	// Put replaces any pending code for email.
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	// Check consumes the code on success. Each failure counts as one attempt.
	Check(ctx context.Context, email, code string, maxAttempts int) error
	// Reserve returns ErrOTPCooldown when a code was issued less than cooldown ago.
	Reserve(ctx context.Context, email string, cooldown time.Duration) error
}

func NewOTPStore(db *gorm.DB, rdb *redis.Client) OTPStore {
	if rdb != nil {
		return NewRedisOTPStore(rdb)
	}
	return NewDBOTPStore(db)
}

func hashOTP(email, code string) string {
	sum := sha256.Sum256([]byte(normalizeEmail(email) + ":" + code))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func otpTTL(cfg *config.OTPConfig) time.Duration {
	return time.Duration(cfg.TTLMinutes) * time.Minute
}

// DBOTPStore keeps codes in the otp_codes table.
type DBOTPStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBOTPStore(db *gorm.DB) *DBOTPStore {
	return &DBOTPStore{db: db, now: time.Now}
}

func (s *DBOTPStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	email = normalizeEmail(email)
	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTPCode{}).
			Where("email = ? AND consumed_at IS NULL", email).
			Update("consumed_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&models.OTPCode{
			Email:     email,
			CodeHash:  hashOTP(email, code),
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		}).Error
	})
}

func (s *DBOTPStore) Check(ctx context.Context, email, code string, maxAttempts int) error {
	email = normalizeEmail(email)
	now := s.now()

	var otp models.OTPCode
	err := s.db.WithContext(ctx).
		Where("email = ? AND consumed_at IS NULL AND expires_at > ?", email, now).
		Order("id DESC").First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOTPExpired
	}
	if err != nil {
		return err
	}
	if maxAttempts > 0 && otp.Attempts >= maxAttempts {
		return ErrOTPTooManyAttempts
	}

	if subtle.ConstantTimeCompare([]byte(otp.CodeHash), []byte(hashOTP(email, code))) != 1 {
		s.db.WithContext(ctx).Model(&otp).Update("attempts", gorm.Expr("attempts + 1"))
		return ErrOTPInvalid
	}
	return s.db.WithContext(ctx).Model(&otp).Update("consumed_at", now).Error
}

func (s *DBOTPStore) Reserve(ctx context.Context, email string, cooldown time.Duration) error {
	var last models.OTPCode
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Order("id DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if s.now().Sub(last.CreatedAt) < cooldown {
		return ErrOTPCooldown
	}
	return nil
}

// PurgeExpired removes codes that can no longer be used.
func (s *DBOTPStore) PurgeExpired(ctx context.Context) (int64, error) {
	now := s.now()
	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR consumed_at IS NOT NULL", now).
		Delete(&models.OTPCode{})
	return result.RowsAffected, result.Error
}

// RedisOTPStore keeps codes in a hash that expires with the code.
type RedisOTPStore struct {
	rdb *redis.Client
}

func NewRedisOTPStore(rdb *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{rdb: rdb}
}

func otpKey(email string) string      { return "lapor:otp:" + normalizeEmail(email) }
func cooldownKey(email string) string { return "lapor:otp:cooldown:" + normalizeEmail(email) }

func (s *RedisOTPStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	key := otpKey(email)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "hash", hashOTP(email, code), "attempts", 0)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisOTPStore) Check(ctx context.Context, email, code string, maxAttempts int) error {
	key := otpKey(email)
	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if len(fields) == 0 {
		return ErrOTPExpired
	}
	attempts, _ := strconv.Atoi(fields["attempts"])
	if maxAttempts > 0 && attempts >= maxAttempts {
		return ErrOTPTooManyAttempts
	}
	if subtle.ConstantTimeCompare([]byte(fields["hash"]), []byte(hashOTP(email, code))) != 1 {
		s.rdb.HIncrBy(ctx, key, "attempts", 1)
		return ErrOTPInvalid
	}
	return s.rdb.Del(ctx, key).Err()
}

func (s *RedisOTPStore) Reserve(ctx context.Context, email string, cooldown time.Duration) error {
	if cooldown <= 0 {
		return nil
	}
	ok, err := s.rdb.SetNX(ctx, cooldownKey(email), 1, cooldown).Result()
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if !ok {
		return ErrOTPCooldown
	}
	return nil
}

// NewRedisClient connects to Redis or returns nil when it is disabled or unreachable.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) *redis.Client {
	if !cfg.Enabled {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil
	}
	return rdb
}
