package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rides")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OTPTTL != 120*time.Second {
		t.Fatalf("expected otp ttl 120s, got %v", cfg.OTPTTL)
	}
	if cfg.OTPRateWindow != time.Minute || cfg.OTPRateMax != 1 {
		t.Fatalf("expected 1 request per minute, got %d per %v", cfg.OTPRateMax, cfg.OTPRateWindow)
	}
	if cfg.SMSTimeout != 10*time.Second {
		t.Fatalf("expected sms timeout 10s, got %v", cfg.SMSTimeout)
	}
	if cfg.JWTAccessTTL != 1200*time.Minute {
		t.Fatalf("expected access ttl 1200m, got %v", cfg.JWTAccessTTL)
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rides")
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is empty")
	}
	os.Unsetenv("JWT_SECRET")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoadDatabaseConfig_IgnoresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/rides")
	t.Setenv("JWT_SECRET", "")
	cfg, err := LoadDatabaseConfig()
	if err != nil {
		t.Fatalf("load database config: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/rides" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
}

func TestConfigLocation_FallsBackToUTC(t *testing.T) {
	cfg := &Config{TokenTimezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
}
