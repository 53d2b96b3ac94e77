package worker

import (
	"context"
	"math"
	"net/url"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Idle bucket eviction bounds
const (
	minIdleTTL = time.Minute
	maxIdleTTL = 24 * time.Hour
)

// Limiter keeps one token bucket per key. Keys are remote hosts for
// catalog fetches and client addresses for the chat API. A bucket left
// idle long enough to refill completely is dropped.
type Limiter struct {
	buckets      *gocache.Cache
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing requestsPerSecond per key
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	idle := idleTTL(requestsPerSecond, burst)
	return &Limiter{
		buckets:      gocache.New(idle, idle),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// idleTTL is the time a bucket takes to refill from empty, clamped
func idleTTL(requestsPerSecond float64, burst int) time.Duration {
	if requestsPerSecond <= 0 || math.IsInf(requestsPerSecond, 0) {
		return maxIdleTTL
	}
	seconds := float64(burst) / requestsPerSecond
	if seconds >= maxIdleTTL.Seconds() {
		return maxIdleTTL
	}
	if d := time.Duration(seconds * float64(time.Second)); d > minIdleTTL {
		return d
	}
	return minIdleTTL
}

// Wait blocks until key may proceed or ctx is done
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// Allow reports whether key may proceed now, consuming a token if so
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// WaitWithDelay waits for a token and then for an additional delay
// (a robots.txt crawl delay, for example)
func (l *Limiter) WaitWithDelay(ctx context.Context, key string, additionalDelay time.Duration) error {
	if err := l.Wait(ctx, key); err != nil {
		return err
	}

	if additionalDelay > 0 {
		timer := time.NewTimer(additionalDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return nil
}

// Len returns the number of tracked keys, including expired ones not yet swept
func (l *Limiter) Len() int {
	return l.buckets.ItemCount()
}

// get returns the bucket for key and pushes back its idle expiry
func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, found := l.buckets.Get(key); found {
		limiter := cached.(*rate.Limiter)
		l.buckets.SetDefault(key, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.buckets.SetDefault(key, limiter)
	return limiter
}

// HostKey returns the host of rawURL, or rawURL itself if it does not parse
func HostKey(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
