package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/samber/lo"
)

// CORS applies the configured allowed origin policy; an empty list falls back to localhost.
func CORS(origins []string) func(http.Handler) http.Handler {
	origins = lo.Compact(origins)
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
