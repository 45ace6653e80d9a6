// Package ratelimiter はクライアント単位のリクエスト頻度制限を提供します。
package ratelimiter

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleTTL を超えて使われていないクライアントのリミッターは破棄されます。
const idleTTL = 10 * time.Minute

// RateLimiterInterface は、キーごとにリクエストを許可するかを判定するインターフェースです。
type RateLimiterInterface interface {
	Allow(key string) bool
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter は、キー（クライアントIP等）ごとにトークンバケットで頻度を制限します。
type RateLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*entry
	now     func() time.Time
}

var _ RateLimiterInterface = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// rps が0以下の場合は制限なし、burst が1未満の場合は1として扱います。
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		clients: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow はキーに対するリクエストを1件消費し、上限内であれば true を返します。
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evict(now)

	e, ok := rl.clients[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// retryAfter は次の1件が許可されるまでのおおよその秒数です。
func (rl *RateLimiter) retryAfter() int {
	if rl.limit == rate.Inf || rl.limit <= 0 {
		return 1
	}
	return int(math.Ceil(1 / float64(rl.limit)))
}

// evict はアイドル状態のリミッターを削除します。呼び出し側でロックを保持していること。
func (rl *RateLimiter) evict(now time.Time) {
	for k, e := range rl.clients {
		if now.Sub(e.lastSeen) > idleTTL {
			delete(rl.clients, k)
		}
	}
}

// Middleware はクライアントIPごとに頻度を制限するginミドルウェアを返します。
// 上限を超えたリクエストは429で拒否されます。
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if rl.Allow(key) {
			c.Next()
			return
		}

		slog.Warn("rate limit exceeded", "remote_addr", key, "path", c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(rl.retryAfter()))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	}
}
