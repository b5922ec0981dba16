// Package requestctx carries per-request Gemini overrides through context.Context.
//
// The values are attached once at request entry (see middleware.RequestContext) and
// read by any code that receives the request context, so service signatures do not
// have to thread credentials explicitly.
package requestctx

import (
	"context"
	"strings"
)

// Inbound headers consumed at request entry.
const (
	HeaderAPIKey  = "X-Gemini-Api-Key"
	HeaderModelID = "X-Gemini-Model-Id"
)

type contextKey struct{}

// Values holds the optional overrides of one inbound request.
type Values struct {
	APIKey  string
	ModelID string
}

// HasAPIKey reports whether the request supplied its own credential.
func (v Values) HasAPIKey() bool {
	return v.APIKey != ""
}

// With returns a child of ctx carrying values. Empty or whitespace fields count as absent.
func With(ctx context.Context, values Values) context.Context {
	values.APIKey = strings.TrimSpace(values.APIKey)
	values.ModelID = strings.TrimSpace(values.ModelID)
	return context.WithValue(ctx, contextKey{}, values)
}

// From returns the values attached to ctx. ok is false outside any request scope;
// callers fall back to server defaults in that case.
func From(ctx context.Context) (Values, bool) {
	if ctx == nil {
		return Values{}, false
	}
	values, ok := ctx.Value(contextKey{}).(Values)
	return values, ok
}
