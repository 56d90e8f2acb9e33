package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/logger"
	"github.com/voltmap/chargepoint/internal/request"
	"go.uber.org/zap"
)

// Auth creates the bearer-token guard for protected routes. It validates the
// session token against the same secret the issuer signs with and attaches
// the decoded principal to the request context. A request that fails here
// never reaches the downstream handler.
func Auth(issuer *auth.TokenIssuer, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondAuthError(w, log, auth.ErrMissingToken.Error())
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondAuthError(w, log, auth.ErrTokenInvalid.Error())
				return
			}

			principal, err := issuer.Verify(parts[1])
			if err != nil {
				log.Debug("token_verification_failed",
					zap.String("path", logger.SanitizePath(r.URL.Path)),
					zap.String("reason", logger.SanitizeError(err)),
				)
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					respondAuthError(w, log, auth.ErrTokenExpired.Error())
				default:
					respondAuthError(w, log, auth.ErrTokenInvalid.Error())
				}
				return
			}

			ctx := request.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondAuthError(w http.ResponseWriter, log *zap.Logger, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	response := map[string]any{
		"success":   false,
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error("failed_to_encode_auth_error", zap.Error(err))
	}
}
