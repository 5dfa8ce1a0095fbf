package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
}

// maxTrackedClients bounds the limiter map; field deployments have a
// known, small set of callers, so hitting it means address churn, not
// real clients.
const maxTrackedClients = 10000

// RateLimiter throttles the synchronous API per client address, so one
// misbehaving device or script cannot starve the verification endpoints
// for the rest of the fleet.
type RateLimiter struct {
	config  RateLimiterConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		config:  config,
		clients: make(map[string]*clientLimiter),
	}
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[client]
	if !ok {
		if len(rl.clients) >= maxTrackedClients {
			rl.evictOldest()
		}
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.config.Rate, rl.config.Burst)}
		rl.clients[client] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

func (rl *RateLimiter) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, cl := range rl.clients {
		if oldestKey == "" || cl.lastSeen.Before(oldest) {
			oldestKey = key
			oldest = cl.lastSeen
		}
	}
	if oldestKey != "" {
		delete(rl.clients, oldestKey)
	}
}
