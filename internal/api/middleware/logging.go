package middleware

import (
	"log/slog"
	"net/http"

	"github.com/zn-har/Bingo/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")))
}

// CORS creates CORS middleware for the API
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return middleware.CORS(allowedOrigins)
}
