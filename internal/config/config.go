package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort       string   `env:"HTTP_PORT" envDefault:"8080"`
	GinMode        string   `env:"GIN_MODE" envDefault:"release"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	DatabaseURL    string   `env:"DATABASE_URL,required"`
	MigrateOnBoot  bool     `env:"MIGRATE_ON_BOOT" envDefault:"true"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret     string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"ride-auth"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"1200m"`
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"720h"`
	TokenTimezone string        `env:"TOKEN_TIMEZONE" envDefault:"Asia/Tehran"`

	OTPTTL        time.Duration `env:"OTP_TTL" envDefault:"120s"`
	OTPRateWindow time.Duration `env:"OTP_RATE_WINDOW" envDefault:"1m"`
	OTPRateMax    int           `env:"OTP_RATE_MAX" envDefault:"1"`

	SMSProvider  string        `env:"SMS_PROVIDER" envDefault:"log"`
	SMSTimeout   time.Duration `env:"SMS_TIMEOUT" envDefault:"10s"`
	KaveBaseURL  string        `env:"SMS_KAVE_BASE_URL" envDefault:"https://api.kavenegar.com/v1/"`
	KaveAPIKey   string        `env:"SMS_KAVE_API_KEY"`
	KaveTemplate string        `env:"KV_PATTERN_NAME_SEND_OTP"`
	TwilioSID    string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioToken  string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom   string        `env:"TWILIO_FROM"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DatabaseConfig es el subconjunto que necesitan las herramientas de migración.
type DatabaseConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
}

func LoadDatabaseConfig() (*DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location devuelve la zona horaria usada para mostrar vencimientos de tokens.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TokenTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
