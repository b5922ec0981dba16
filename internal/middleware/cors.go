package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/zhouzirui/ai-interviewer/backend/internal/requestctx"
)

// CORS allows the browser frontend to call the API, including the override headers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Content-Type", "X-Requested-With",
			requestctx.HeaderAPIKey, requestctx.HeaderModelID,
		},
		ExposedHeaders: []string{"X-Request-Id", "X-Interview-Phase"},
		MaxAge:         300,
	})
}
