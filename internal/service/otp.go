package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type otpPurpose string

const (
	// purposeLogin cubre request OTP y verify-phone; ambos se canjean en verify OTP.
	purposeLogin  otpPurpose = "login"
	purposeForget otpPurpose = "forget"
)

const (
	otpMin = 100000
	otpMax = 999999

	// maxOTPFailures intentos fallidos invalidan el desafío antes de su TTL.
	maxOTPFailures = 5
)

// otpKey es la única forma de clave: el código es el valor, nunca parte de la clave.
func otpKey(purpose otpPurpose, phone, ip string) string {
	return "otp:" + string(purpose) + ":" + phone + ":" + ip
}

func throttleKey(purpose otpPurpose, phone string) string {
	return string(purpose) + ":" + phone
}

// generateOTPCode devuelve un código de 6 dígitos uniforme en [100000, 999999].
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// OTPCache guarda códigos efímeros con TTL por clave.
// Consume borra la clave solo si el código coincide y reporta si esta llamada la borró.
// Tras maxOTPFailures códigos erróneos la clave se descarta.
type OTPCache interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	Consume(ctx context.Context, key, code string) (bool, error)
}

type otpEntry struct {
	code      string
	expiresAt time.Time
	failures  int
}

type memoryOTPCache struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]otpEntry
}

func NewMemoryOTPCache() OTPCache {
	return newMemoryOTPCache(func() time.Time { return time.Now().UTC() })
}

func newMemoryOTPCache(now func() time.Time) *memoryOTPCache {
	return &memoryOTPCache{
		now:   now,
		items: make(map[string]otpEntry),
	}
}

func (c *memoryOTPCache) Put(_ context.Context, key, code string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = otpEntry{code: code, expiresAt: c.now().Add(ttl)}
	return nil
}

// lookup asume c.mu tomado.
func (c *memoryOTPCache) lookup(key string) (otpEntry, bool) {
	entry, ok := c.items[key]
	if !ok {
		return otpEntry{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.items, key)
		return otpEntry{}, false
	}
	return entry, true
}

func (c *memoryOTPCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lookup(key)
	return entry.code, ok, nil
}

func (c *memoryOTPCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lookup(key)
	delete(c.items, key)
	return ok, nil
}

func (c *memoryOTPCache) Consume(_ context.Context, key, code string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.lookup(key)
	if !ok {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) != 1 {
		entry.failures++
		if entry.failures >= maxOTPFailures {
			delete(c.items, key)
		} else {
			c.items[key] = entry
		}
		return false, nil
	}
	delete(c.items, key)
	return true, nil
}

// KEYS[1] código, KEYS[2] contador de fallos; ARGV[1] código recibido, ARGV[2] máximo de fallos.
const redisOTPConsumeScript = `
local code = redis.call("GET", KEYS[1])
if not code then
  return 0
end
if code == ARGV[1] then
  redis.call("DEL", KEYS[1], KEYS[2])
  return 1
end
local failures = redis.call("INCR", KEYS[2])
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 then
  redis.call("PEXPIRE", KEYS[2], ttl)
end
if failures >= tonumber(ARGV[2]) then
  redis.call("DEL", KEYS[1], KEYS[2])
end
return 0
`

func otpFailuresKey(key string) string {
	return key + ":failures"
}

type redisOTPCache struct {
	client *redis.Client
}

func NewRedisOTPCache(client *redis.Client) OTPCache {
	if client == nil {
		return nil
	}
	return &redisOTPCache{client: client}
}

// Put reinicia el contador de fallos junto con el código.
func (c *redisOTPCache) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, code, ttl)
		pipe.Del(ctx, otpFailuresKey(key))
		return nil
	})
	return err
}

func (c *redisOTPCache) Get(ctx context.Context, key string) (string, bool, error) {
	code, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (c *redisOTPCache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if err := c.client.Del(ctx, otpFailuresKey(key)).Err(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisOTPCache) Consume(ctx context.Context, key, code string) (bool, error) {
	n, err := c.client.Eval(ctx, redisOTPConsumeScript, []string{key, otpFailuresKey(key)}, code, maxOTPFailures).Int()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
