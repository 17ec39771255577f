package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Limiter считает запросы в фиксированном окне.
// Реализация должна быть безопасна для конкурентного использования.
type Limiter interface {
	// Allow регистрирует попытку и сообщает, укладывается ли она в лимит.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimiter — счётчики фиксированного окна поверх Redis:
// INCR по ключу, EXPIRE на первом обращении в окне.
type RateLimiter struct {
	client *goredis.Client
	prefix string
}

// NewRateLimiter создаёт rate limiter поверх Redis.
func NewRateLimiter(client *goredis.Client) *RateLimiter {
	return &RateLimiter{client: client, prefix: "ratelimit:"}
}

// Allow инкрементирует счётчик окна и сравнивает его с лимитом.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := l.prefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}

// LocalLimiter — in-process реализация Limiter для работы без Redis
// (разработка, тесты, single-instance).
type LocalLimiter struct {
	mu      sync.Mutex
	windows map[string]*localWindow
	now     func() time.Time
}

type localWindow struct {
	count   int
	resetAt time.Time
}

// NewLocalLimiter создаёт in-process rate limiter.
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		windows: make(map[string]*localWindow),
		now:     func() time.Time { return time.Now() },
	}
}

// Allow регистрирует попытку в локальном окне.
func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &localWindow{resetAt: now.Add(window)}
		l.windows[key] = w
	}

	w.count++
	return w.count <= limit, nil
}

var (
	_ Limiter = (*RateLimiter)(nil)
	_ Limiter = (*LocalLimiter)(nil)
)
