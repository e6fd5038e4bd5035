package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore issues and verifies short-lived one-time passwords for the
// password reset flow. Codes are stored hashed in Redis keyed by email, so a
// database dump never exposes a usable code.
type OTPStore struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
}

func NewOTPStore(client *redis.Client, secret []byte, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, secret: secret, ttl: ttl}
}

// Issue generates a 6-digit code for the email, stores its hash with the
// configured TTL, and returns the plaintext code for delivery.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.client.Set(ctx, s.key(email), s.hash(email, code), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// Verify checks the code for the email and consumes it on success. A code can
// be used at most once.
func (s *OTPStore) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.client.Get(ctx, s.key(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load otp: %w", err)
	}

	if !hmac.Equal([]byte(stored), []byte(s.hash(email, code))) {
		return false, nil
	}

	if err := s.client.Del(ctx, s.key(email)).Err(); err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return true, nil
}

func (s *OTPStore) key(email string) string {
	return "otp:" + email
}

func (s *OTPStore) hash(email, code string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(email + ":" + code))
	return hex.EncodeToString(mac.Sum(nil))
}
