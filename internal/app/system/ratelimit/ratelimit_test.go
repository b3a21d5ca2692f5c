package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_WindowExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("a"))
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Hour)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
	l.Reset("k")
	assert.True(t, l.Allow("k"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", ClientIP(r))

	r.Header.Set("X-Real-IP", "192.0.2.9")
	assert.Equal(t, "192.0.2.9", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", ClientIP(r))
}

func TestLoginLimiter_EmailCaseInsensitive(t *testing.T) {
	ll := NewLoginLimiter()
	for i := 0; i < 5; i++ {
		r := httptest.NewRequest("POST", "/api/auth/login", nil)
		r.RemoteAddr = "10.0.0.1:1"
		ok, _ := ll.Check(r, "User@Example.com")
		assert.True(t, ok)
	}
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.2:1"
	ok, reason := ll.Check(r, "user@example.com")
	assert.False(t, ok)
	assert.NotEmpty(t, reason)

	ll.ResetEmail("USER@example.com")
	ok, _ = ll.Check(r, "user@example.com")
	assert.True(t, ok)
}
