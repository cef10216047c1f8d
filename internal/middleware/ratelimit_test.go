package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// --- GeneralMiddleware (API全般) のテスト ---

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     2, // 2 req/sec
		GeneralBurst:    5, // バースト5
		LoginRate:       1, // 未使用
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handlerCallCount := 0
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
		ctx := context.WithValue(req.Context(), userIDContextKey, "user-1")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    2, // バースト2
		LoginRate:       1,
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// バースト分（2回）は通る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
		ctx := context.WithValue(req.Context(), userIDContextKey, "user-rate-limit")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	// 3回目はレート制限に引っかかる
	req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
	ctx := context.WithValue(req.Context(), userIDContextKey, "user-rate-limit")
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}
}

func TestRateLimitMiddleware_Returns429WithRetryAfterHeader(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1, // 1 req/sec
		GeneralBurst:    1, // バースト1
		LoginRate:       1,
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 1回目は通る
	req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
	ctx := context.WithValue(req.Context(), userIDContextKey, "user-retry-after")
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// 2回目は429とRetry-Afterヘッダー
	req = httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDContextKey, "user-retry-after"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	res := w.Result()
	if res.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusTooManyRequests)
	}

	retryAfter := res.Header.Get("Retry-After")
	if retryAfter == "" {
		t.Fatal("Retry-After header is missing")
	}
	sec, err := strconv.Atoi(retryAfter)
	if err != nil {
		t.Fatalf("Retry-After is not an integer: %q", retryAfter)
	}
	if sec < 1 {
		t.Errorf("Retry-After = %d, want >= 1", sec)
	}

	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["code"] != "rate_limit_exceeded" {
		t.Errorf("code = %q, want %q", body["code"], "rate_limit_exceeded")
	}
}

func TestRateLimitMiddleware_IsolatesLimitsPerUser(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     1,
		GeneralBurst:    1,
		LoginRate:       1,
		LoginBurst:      10,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-aがバーストを使い切る
	req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDContextKey, "user-a"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDContextKey, "user-a"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("user-a second request: status = %d, want 429", w.Result().StatusCode)
	}

	// user-bは影響を受けない
	req = httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDContextKey, "user-b"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("user-b request: status = %d, want 200", w.Result().StatusCode)
	}
}

func TestRateLimitMiddleware_RejectsRequestWithoutUserID(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// --- LoginMiddleware (ログイン専用) のテスト ---

func TestLoginRateLimitMiddleware_LimitsBySourceIP(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     10,
		GeneralBurst:    10,
		LoginRate:       1, // 1 req/sec
		LoginBurst:      2, // バースト2
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.LoginMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 同一IPからバースト分（2回）は通る
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", nil)
		req.RemoteAddr = "203.0.113.5:54321"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	// 3回目は429
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", nil)
	req.RemoteAddr = "203.0.113.5:54321"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}

	// 別IPは影響を受けない
	req = httptest.NewRequest(http.MethodPost, "/v1/auth/token", nil)
	req.RemoteAddr = "198.51.100.7:44444"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", w.Result().StatusCode)
	}
}

func TestLoginRateLimitMiddleware_SamePortIgnored(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     10,
		GeneralBurst:    10,
		LoginRate:       1,
		LoginBurst:      1,
		CleanupInterval: 1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.LoginMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 同一IPの別ポートは同じキーとして扱われる
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/token", nil)
	req.RemoteAddr = "203.0.113.9:10001"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodPost, "/v1/auth/token", nil)
	req.RemoteAddr = "203.0.113.9:10002"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusTooManyRequests)
	}

	if rl.LoginLimiterCount() != 1 {
		t.Errorf("login limiter count = %d, want 1", rl.LoginLimiterCount())
	}
}

// --- 設定とクリーンアップのテスト ---

func TestNewRateLimiterConfig_ConvertsPerMinuteRates(t *testing.T) {
	cfg := NewRateLimiterConfig(120, 10)

	if cfg.GeneralRate != 2 {
		t.Errorf("GeneralRate = %v, want 2", cfg.GeneralRate)
	}
	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.LoginBurst != 10 {
		t.Errorf("LoginBurst = %d, want 10", cfg.LoginBurst)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:     10,
		GeneralBurst:    10,
		LoginRate:       10,
		LoginBurst:      10,
		CleanupInterval: 10 * time.Millisecond,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/todos", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDContextKey, "user-stale"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("limiter count = %d, want 1", rl.GeneralLimiterCount())
	}

	// TTL（CleanupInterval * 2）経過後にクリーンアップされる
	deadline := time.Now().Add(2 * time.Second)
	for rl.GeneralLimiterCount() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("limiter count after cleanup = %d, want 0", rl.GeneralLimiterCount())
	}
}
