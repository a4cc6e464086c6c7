package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"claimlens-service/internal/pkg/exceptions"
	"claimlens-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// DailyQuota caps the number of claim submissions per client IP per UTC
// day. The counter lives in redis and expires at the end of the day.
func (m *Middlewares) DailyQuota(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		quota := m.InternalConfig.App.DailyRequestQuota
		if quota <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now().UTC()
		clientIP := utils.ClientIP(r)
		key := fmt.Sprintf("daily_quota:%s:%s", clientIP, now.Format("2006-01-02"))
		endOfDay := now.Truncate(24 * time.Hour).Add(24 * time.Hour)

		count, err := m.RedisRepository.IncrementWithExpiry(r.Context(), key, int(endOfDay.Sub(now).Seconds())+1)
		if err != nil {
			m.Log.Warn("DailyQuota counter unavailable, letting request pass", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if count > int64(quota) {
			m.Log.Warn("DailyQuota exceeded",
				zap.String("client_ip", clientIP),
				zap.Int64("count", count),
				zap.Int("quota", quota),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrDailyQuotaExceeded(nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
