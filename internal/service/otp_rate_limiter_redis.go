package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const throttleKeyPrefix = "otp:throttle:"

// Cuenta emisiones por ventana; el TTL se fija solo en la primera del periodo.
const redisOTPAllowScript = `
local issued = redis.call("INCR", KEYS[1])
if issued == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return issued
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

type redisOTPRateLimiter struct {
	client        redisEvaler
	logger        *zap.Logger
	windowSeconds int
	maxIssued     int
	timeout       time.Duration
}

func NewRedisOTPRateLimiter(client *redis.Client, window time.Duration, max int, logger *zap.Logger) OTPRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisOTPRateLimiter(client, window, max, logger)
}

func newRedisOTPRateLimiter(client redisEvaler, window time.Duration, max int, logger *zap.Logger) *redisOTPRateLimiter {
	seconds := int(window / time.Second)
	if seconds <= 0 {
		seconds = 60
	}
	if max <= 0 {
		max = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisOTPRateLimiter{
		client:        client,
		logger:        logger,
		windowSeconds: seconds,
		maxIssued:     max,
		timeout:       500 * time.Millisecond,
	}
}

// Allow deja pasar si Redis falla: el throttle no debe tumbar el login.
func (l *redisOTPRateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	issued, err := l.client.Eval(ctx, redisOTPAllowScript, []string{throttleKeyPrefix + key}, l.windowSeconds).Int()
	if err != nil {
		l.logger.Warn("otp throttle unavailable, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}
	return issued <= l.maxIssued
}
