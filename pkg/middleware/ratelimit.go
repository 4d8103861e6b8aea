package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/coffeeshop/pkg/apierror"
	"golang.org/x/time/rate"
)

// visitorTTL はアクセスの無いクライアントのリミッタを破棄するまでの時間。
const visitorTTL = 10 * time.Minute

// visitor はクライアントIPごとのリミッタと最終アクセス時刻。
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter はクライアントIPごとにトークンバケットでリクエスト数を制限する。
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	// now は現在時刻を返す。テストで差し替える。
	now func() time.Time
}

// NewRateLimiter は1秒あたりrpsリクエスト、バーストburstのRateLimiterを生成する。
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// allow はipからのリクエストを許可するかを返す。
func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep は一定時間アクセスの無いクライアントを破棄する。呼び出し側でmuを保持すること。
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < visitorTTL {
		return
	}
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) >= visitorTTL {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

// Limit はレート制限を行うGinミドルウェアを返す。
// 制限を超えたリクエストには429の統一エラーレスポンスを返す。
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			apierror.Abort(c, apierror.TooManyRequests())
			return
		}
		c.Next()
	}
}
