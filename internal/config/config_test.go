package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is empty")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/caremarket")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.OTPTTLMin != 5 {
		t.Errorf("expected default OTP TTL 5, got %d", cfg.OTPTTLMin)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
}

func TestLoad_ProductionWithoutSecretsFails(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/caremarket")
	setEnv(t, "ENV", "production")
	setEnv(t, "JWT_SECRET", "")
	setEnv(t, "OTP_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected Load to fail in production without JWT_SECRET")
	}

	setEnv(t, "JWT_SECRET", "s3cret")
	setEnv(t, "OTP_SECRET", "otp-s3cret")
	if _, err := Load(); err != nil {
		t.Errorf("unexpected error with secrets set: %v", err)
	}
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{Env: "production", OTPTTLMin: 5}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}

	cfg.JWTSecret = "s3cret"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing OTP_SECRET in production")
	}

	cfg.OTPSecret = "otp-s3cret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsNonPositiveOTPTTL(t *testing.T) {
	cfg := &Config{Env: "development", OTPTTLMin: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero OTP TTL")
	}
}
