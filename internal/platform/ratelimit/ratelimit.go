package ratelimit

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/dillanmilo/railcore/internal/auth/middleware"
	"github.com/dillanmilo/railcore/internal/metrics"
)

// Policy allows Limit requests per Window for each bucket Key returns.
type Policy struct {
	// Name labels the route in logs and metrics, e.g. "reports:send".
	Name   string
	Window time.Duration
	Limit  int
	// LimitFunc and WindowFunc, when set and positive, replace Limit and
	// Window for a request. Org level settings plug in here.
	WindowFunc func(echo.Context) time.Duration
	LimitFunc  func(echo.Context) int
	Key        func(echo.Context) string
}

// Store counts hits per bucket.
type Store interface {
	// Allow counts one hit. A refused hit reports the seconds left in the window.
	Allow(ctx echo.Context, key string, limit int, window time.Duration) (allowed bool, retryAfterSec int, err error)
}

func (p *Policy) effective(c echo.Context) (string, int, time.Duration) {
	key := "global"
	if p.Key != nil {
		key = p.Key(c)
	}
	win, lim := p.Window, p.Limit
	if p.WindowFunc != nil {
		if w := p.WindowFunc(c); w > 0 {
			win = w
		}
	}
	if p.LimitFunc != nil {
		if l := p.LimitFunc(c); l > 0 {
			lim = l
		}
	}
	return key, lim, win
}

func withDefaults(p Policy) Policy {
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	if p.Limit <= 0 {
		p.Limit = 60
	}
	return p
}

// Middleware enforces p with counters local to this process.
func Middleware(p Policy) echo.MiddlewareFunc {
	return MiddlewareWithStore(p, NewMemoryStore())
}

// MiddlewareWithStore enforces p against s. Store errors let the request through.
func MiddlewareWithStore(p Policy, s Store) echo.MiddlewareFunc {
	p = withDefaults(p)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, lim, win := p.effective(c)
			allowed, retryAfter, err := s.Allow(c, key, lim, win)
			if err != nil {
				c.Logger().Warnf("rate limit store error: endpoint=%s err=%v", p.Name, err)
				return next(c)
			}
			if allowed {
				return next(c)
			}
			src := "ip"
			if strings.Contains(key, ":org:") {
				src = "org"
			}
			metrics.IncRateLimitExceeded(p.Name, src)
			c.Logger().Warnf("rate limit exceeded: endpoint=%s key=%s limit=%d window=%s retry_after=%ds", p.Name, key, lim, win.String(), retryAfter)
			if retryAfter > 0 {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		}
	}
}

// memoryStore is a fixed window per key, guarded by one mutex.
type memoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*bucket
}

type bucket struct {
	start time.Time
	count int
}

func NewMemoryStore() Store {
	return &memoryStore{now: time.Now, buckets: map[string]*bucket{}}
}

func (s *memoryStore) Allow(_ echo.Context, key string, limit int, window time.Duration) (bool, int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok || now.Sub(b.start) >= window {
		s.buckets[key] = &bucket{start: now, count: 1}
		return true, 0, nil
	}
	if b.count < limit {
		b.count++
		return true, 0, nil
	}
	remaining := window - now.Sub(b.start)
	return false, int((remaining + time.Second - 1) / time.Second), nil
}

// KeyOrgOrIP buckets by the token's org, or the client IP for anonymous
// requests, under prefix.
func KeyOrgOrIP(prefix string) func(echo.Context) string {
	return func(c echo.Context) string {
		if org, ok := authmw.OrgID(c); ok {
			return prefix + ":org:" + org.String()
		}
		return prefix + ":ip:" + c.RealIP()
	}
}
