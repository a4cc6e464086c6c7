package middlewares

import (
	"context"
	"net/http"

	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/exceptions"
	"claimlens-service/internal/pkg/utils"
)

// APIKeyAuth guards the claim endpoints. An empty configured key disables
// the check for local development.
func (m *Middlewares) APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		configuredKey := m.InternalConfig.App.APIKey
		if configuredKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(constvars.HeaderXAPIKey)
		if apiKey != configuredKey {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_API_KEY_AUTH, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
