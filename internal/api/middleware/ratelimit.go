package middleware

import (
	"log/slog"
	"net/http"

	"github.com/zn-har/Bingo/internal/api/apierr"
	"github.com/zn-har/Bingo/internal/metrics"
	"github.com/zn-har/Bingo/internal/middleware"
)

// ScanRateLimit throttles scan submissions per client IP. Rejections are
// answered with RATE_LIMITED and counted in the scan metrics.
func ScanRateLimit(limiter *middleware.IPRateLimiter, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.RateLimit(limiter, func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("scan rate limited",
			slog.String("remote_addr", middleware.ClientIP(r)),
		)
		m.ScanSubmitted(metrics.ScanRateLimited)
		apierr.WriteError(w, apierr.NewRateLimitedError())
	})
}
