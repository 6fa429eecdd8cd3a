package server

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, 10, time.Second)
	t.Cleanup(rl.Stop)
	ip := "127.0.0.1"

	for i := range 5 {
		assert.True(t, rl.Allow(ip), "request %d should be allowed", i)
	}
	assert.False(t, rl.Allow(ip), "6th request should be blocked")
	assert.True(t, rl.IsBanned(ip))
	assert.False(t, rl.IsBanned("10.0.0.9"))
}

func TestRateLimiter_MinuteLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(100, 5, time.Second)
	t.Cleanup(rl.Stop)

	for range 5 {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(100, 200, time.Second)
	t.Cleanup(rl.Stop)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 150 {
		wg.Go(func() {
			if rl.Allow("192.168.0.1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	assert.Equal(t, 100, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(10, 10, time.Second)
	t.Cleanup(rl.Stop)
	rl.Allow("1.1.1.1")

	rl.cleanup(time.Now().Add(11 * time.Minute))
	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.requests)
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"通配符", []string{"*"}, "https://evil.example.com", true},
		{"匹配（忽略大小写）", []string{"https://Yahtzee.example.com"}, "https://yahtzee.example.com", true},
		{"不匹配", []string{"https://yahtzee.example.com"}, "https://evil.example.com", false},
		{"无 Origin 头", []string{"https://yahtzee.example.com"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, NewOriginChecker(tt.allowed).Check(req))
		})
	}
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(10)

	for i := range 8 {
		allowed, warning := ml.AllowMessage("c1")
		assert.True(t, allowed)
		assert.False(t, warning, "message %d", i)
	}
	allowed, warning := ml.AllowMessage("c1")
	assert.True(t, allowed)
	assert.True(t, warning)

	ml.AllowMessage("c1")
	allowed, _ = ml.AllowMessage("c1")
	assert.False(t, allowed)
	assert.Equal(t, 1, ml.WarningCount("c1"))

	ml.RemoveClient("c1")
	assert.Equal(t, 0, ml.WarningCount("c1"))
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"X-Forwarded-For 取第一个", map[string]string{"X-Forwarded-For": "1.2.3.4, 5.6.7.8"}, "9.9.9.9:1234", "1.2.3.4"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "2.2.2.2"}, "9.9.9.9:1234", "2.2.2.2"},
		{"RemoteAddr", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"RemoteAddr 无端口", nil, "9.9.9.9", "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(req))
		})
	}
}
