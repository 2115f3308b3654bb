package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate limit tiers. Settlement and login are strict; catalog reads are not.
const (
	limitStrict  = rate.Limit(2)
	burstStrict  = 5
	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

func newVisitorStore() *visitorStore {
	s := &visitorStore{visitors: make(map[string]*visitor)}
	go s.cleanup()
	return s
}

func (s *visitorStore) get(key string, r rate.Limit, b int) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		s.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup evicts idle entries so the map does not grow unbounded.
func (s *visitorStore) cleanup() {
	for {
		time.Sleep(time.Minute)

		s.mu.Lock()
		for key, v := range s.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(s.visitors, key)
			}
		}
		s.mu.Unlock()
	}
}

var defaultVisitors = newVisitorStore()

// RateLimit buckets requests per client. Authenticated merchants get a bucket
// per account, anonymous clients one per IP.
func RateLimit(strict bool) gin.HandlerFunc {
	limit, burst, tier := limitGeneral, burstGeneral, "general"
	if strict {
		limit, burst, tier = limitStrict, burstStrict, "strict"
	}

	return func(c *gin.Context) {
		identity := "ip:" + c.ClientIP()
		if merchantID, ok := MerchantID(c); ok {
			identity = "merchant:" + strconv.FormatInt(merchantID, 10)
		}

		limiter := defaultVisitors.get(identity+":"+tier, limit, burst)
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"kind": "RateLimited", "message": "too many requests"},
			})
			return
		}

		c.Next()
	}
}
