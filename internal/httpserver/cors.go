package httpserver

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/fdg312/fitplan/internal/config"
)

// CORSMiddleware adds CORS headers for the configured origins. With no
// origins configured no CORS headers are sent.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return next
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           600,
	})
	return c.Handler(next)
}
