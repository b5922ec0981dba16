package middleware

import (
	"net/http"

	"github.com/zhouzirui/ai-interviewer/backend/internal/requestctx"
)

// RequestContext attaches the optional credential and model overrides from the
// inbound headers to the request context.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestctx.With(r.Context(), requestctx.Values{
			APIKey:  r.Header.Get(requestctx.HeaderAPIKey),
			ModelID: r.Header.Get(requestctx.HeaderModelID),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
