package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type fakeLimiter struct {
	counts map[string]int64
	err    error
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: make(map[string]int64)}
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func redeemRouter(policy RateLimitPolicy, limiter *fakeLimiter) http.Handler {
	r := chi.NewRouter()
	r.With(RateLimit(policy, limiter, nil)).Post("/api/v1/offer-codes/{code}/redeem", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func redeemRequest(code, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/offer-codes/"+code+"/redeem", nil)
	req.RemoteAddr = ip + ":5555"
	return req
}

func TestRateLimitBlocksPerIP(t *testing.T) {
	limiter := newFakeLimiter()
	router := redeemRouter(NewRateLimitPolicy("redeem", time.Minute, 2, "code", 100), limiter)

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, redeemRequest("SPRING10", "10.0.0.1"))
		if resp.Code != http.StatusCreated {
			t.Fatalf("attempt %d: expected 201 got %d", i+1, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, redeemRequest("SPRING10", "10.0.0.1"))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", resp.Header().Get("Retry-After"))
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, redeemRequest("SPRING10", "10.0.0.2"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("other ip should pass, got %d", resp.Code)
	}
}

func TestRateLimitBlocksPerCodeAcrossIPs(t *testing.T) {
	limiter := newFakeLimiter()
	router := redeemRouter(NewRateLimitPolicy("redeem", time.Minute, 0, "code", 1), limiter)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, redeemRequest("SPRING10", "10.0.0.1"))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, redeemRequest("spring10", "10.0.0.9"))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected code counter to be case-insensitive, got %d", resp.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	router := redeemRouter(NewRateLimitPolicy("redeem", 0, 1, "code", 1), newFakeLimiter())
	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, redeemRequest("SPRING10", "10.0.0.1"))
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected disabled policy to pass, got %d", resp.Code)
		}
	}
}

func TestRateLimitStoreFailure(t *testing.T) {
	limiter := newFakeLimiter()
	limiter.err = errors.New("redis down")
	router := redeemRouter(NewRateLimitPolicy("redeem", time.Minute, 5, "", 0), limiter)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, redeemRequest("SPRING10", "10.0.0.1"))
	if resp.Code != http.StatusBadGateway && resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected dependency failure status, got %d", resp.Code)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("unexpected client ip %q", got)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := clientIP(req); got != "192.0.2.1" {
		t.Fatalf("unexpected client ip %q", got)
	}
}
