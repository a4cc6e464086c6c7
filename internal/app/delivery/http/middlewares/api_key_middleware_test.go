package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"claimlens-service/internal/app/config"
	"claimlens-service/internal/pkg/constvars"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeRedisRepository struct {
	count int64
	err   error
	keys  []string
}

func (f *fakeRedisRepository) IncrementWithExpiry(_ context.Context, key string, _ int) (int64, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return 0, f.err
	}
	f.count++
	return f.count, nil
}

func newTestMiddlewares(apiKey string, quota int, redis *fakeRedisRepository) *Middlewares {
	cfg := &config.InternalConfig{}
	cfg.App.APIKey = apiKey
	cfg.App.DailyRequestQuota = quota
	return NewMiddlewares(zap.NewNop(), cfg, redis)
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAPIKeyAuth(t *testing.T) {
	t.Run("empty configured key disables the check", func(t *testing.T) {
		m := newTestMiddlewares("", 0, &fakeRedisRepository{})
		called := false
		rec := httptest.NewRecorder()

		m.APIKeyAuth(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing key is rejected", func(t *testing.T) {
		m := newTestMiddlewares("secret", 0, &fakeRedisRepository{})
		called := false
		rec := httptest.NewRecorder()

		m.APIKeyAuth(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		m := newTestMiddlewares("secret", 0, &fakeRedisRepository{})
		called := false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderXAPIKey, "guess")

		m.APIKeyAuth(okHandler(&called)).ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("correct key passes through", func(t *testing.T) {
		m := newTestMiddlewares("secret", 0, &fakeRedisRepository{})
		called := false
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderXAPIKey, "secret")

		m.APIKeyAuth(okHandler(&called)).ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDailyQuota(t *testing.T) {
	t.Run("disabled quota skips redis entirely", func(t *testing.T) {
		redis := &fakeRedisRepository{}
		m := newTestMiddlewares("", 0, redis)
		called := false
		rec := httptest.NewRecorder()

		m.DailyQuota(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.True(t, called)
		assert.Empty(t, redis.keys)
	})

	t.Run("requests under the quota pass", func(t *testing.T) {
		redis := &fakeRedisRepository{}
		m := newTestMiddlewares("", 2, redis)
		handler := m.DailyQuota(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			assert.Equal(t, http.StatusAccepted, rec.Code)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "third request of the day is over quota")
	})

	t.Run("counter keys are scoped by client ip", func(t *testing.T) {
		redis := &fakeRedisRepository{}
		m := newTestMiddlewares("", 5, redis)
		called := false
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

		m.DailyQuota(okHandler(&called)).ServeHTTP(httptest.NewRecorder(), req)

		assert.Len(t, redis.keys, 1)
		assert.Contains(t, redis.keys[0], "daily_quota:203.0.113.9:")
	})

	t.Run("redis outage fails open", func(t *testing.T) {
		redis := &fakeRedisRepository{err: errors.New("connection refused")}
		m := newTestMiddlewares("", 1, redis)
		called := false
		rec := httptest.NewRecorder()

		m.DailyQuota(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
