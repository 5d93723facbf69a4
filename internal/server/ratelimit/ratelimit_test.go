package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(config *Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(config)
	l.now = clock.Now
	return l, clock
}

func TestBucket_TakeAndRefill(t *testing.T) {
	start := time.Unix(0, 0)
	b := newBucket(10, 1.0, start)

	for i := 0; i < 10; i++ {
		if ok, _, _ := b.take(start); !ok {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
	if ok, _, _ := b.take(start); ok {
		t.Error("Expected 11th request to be denied")
	}

	later := start.Add(1100 * time.Millisecond)
	if ok, _, _ := b.take(later); !ok {
		t.Error("Expected request to be allowed after refill")
	}
	if ok, _, _ := b.take(later); ok {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestBucket_ResetTime(t *testing.T) {
	start := time.Unix(0, 0)
	b := newBucket(10, 1.0, start)

	var remaining int
	var reset time.Time
	for i := 0; i < 5; i++ {
		_, remaining, reset = b.take(start)
	}
	if remaining != 5 {
		t.Errorf("Expected 5 remaining tokens, got %d", remaining)
	}
	if want := start.Add(5 * time.Second); !reset.Equal(want) {
		t.Errorf("Expected reset at %v, got %v", want, reset)
	}
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/profiles", "GET")
		if !allowed {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
	}

	allowed, info := l.Allow("127.0.0.1", "/profiles", "GET")
	if allowed {
		t.Error("Expected request to be rate limited")
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected a positive RetryAfter when limited")
	}

	// Another client has its own bucket.
	if allowed, _ := l.Allow("10.0.0.2", "/profiles", "GET"); !allowed {
		t.Error("Expected a different client to be allowed")
	}
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 60; i++ {
		l.Allow("c", "/profiles", "GET")
	}
	if allowed, _ := l.Allow("c", "/profiles", "GET"); allowed {
		t.Fatal("Expected bucket to be empty")
	}

	clock.Advance(2 * time.Second)
	if allowed, _ := l.Allow("c", "/profiles", "GET"); !allowed {
		t.Error("Expected a token after two seconds at one per second")
	}
}

func TestLimiter_EndpointConfig(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := l.Allow("c", "/auth/token", "POST"); !allowed {
			t.Fatalf("Expected token request %d to be allowed", i+1)
		}
	}
	allowed, info := l.Allow("c", "/auth/token", "POST")
	if allowed {
		t.Error("Expected token endpoint burst of 5")
	}
	if info.Limit != 20 {
		t.Errorf("Expected limit 20, got %d", info.Limit)
	}

	// Card routes share one prefix bucket.
	for i := 0; i < 10; i++ {
		path := "/cards/extract"
		if i%2 == 0 {
			path = "/cards/embed"
		}
		l.Allow("c", path, "POST")
	}
	if allowed, _ := l.Allow("c", "/cards/extract", "POST"); allowed {
		t.Error("Expected card routes to share a bucket")
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := l.Allow("c", "/health", "GET"); !allowed {
			t.Fatalf("Expected health check %d to be allowed", i+1)
		}
	}
}

func TestLimiter_DisabledWhitelistBlacklist(t *testing.T) {
	disabled, _ := newTestLimiter(&Config{Enabled: false})
	defer disabled.Stop()
	for i := 0; i < 10; i++ {
		if allowed, _ := disabled.Allow("c", "/parse", "POST"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}

	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Whitelist:     map[string]bool{"friend": true},
		Blacklist:     map[string]bool{"foe": true},
	})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if allowed, _ := l.Allow("friend", "/parse", "POST"); !allowed {
			t.Fatal("Expected whitelisted client to be allowed")
		}
	}
	if allowed, _ := l.Allow("foe", "/parse", "POST"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Minute})
	defer l.Stop()

	l.Allow("old", "/profiles", "GET")
	clock.Advance(2 * time.Minute)
	l.Allow("new", "/profiles", "GET")

	if l.Len() != 2 {
		t.Fatalf("Expected 2 buckets, got %d", l.Len())
	}
	l.cleanup()
	if l.Len() != 1 {
		t.Errorf("Expected idle bucket to be removed, got %d buckets", l.Len())
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := l.Allow("shared", "/parse", "POST"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected exactly 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/cards/", Method: "POST", Limit: 1},
		{Path: "/cards/embed", Method: "POST", Limit: 2},
		{Path: "/parse", Method: "POST", Limit: 3},
	}

	tests := []struct {
		path, method string
		wantLimit    int
		wantNil      bool
	}{
		{path: "/cards/embed", method: "POST", wantLimit: 2},
		{path: "/cards/extract", method: "POST", wantLimit: 1},
		{path: "/parse", method: "POST", wantLimit: 3},
		{path: "/parse", method: "GET", wantNil: true},
		{path: "/parse/extra", method: "POST", wantNil: true},
		{path: "/health", method: "GET", wantLimit: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Expected no match, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected a match")
			}
			if got.Limit != tt.wantLimit {
				t.Errorf("Expected limit %d, got %d", tt.wantLimit, got.Limit)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", " 127.0.0.1 , ,10.0.0.1")

	cfg := LoadConfig()
	if cfg.DefaultLimit != 42 || cfg.DefaultWindow != 30*time.Second {
		t.Errorf("Unexpected defaults: %d per %v", cfg.DefaultLimit, cfg.DefaultWindow)
	}
	if len(cfg.Whitelist) != 2 || !cfg.Whitelist["10.0.0.1"] {
		t.Errorf("Unexpected whitelist: %v", cfg.Whitelist)
	}

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	if LoadConfig().Enabled {
		t.Error("Expected rate limiting to be disabled")
	}
}
