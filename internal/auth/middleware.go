package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Middleware creates a middleware for protecting routes. It validates
// the bearer token, rejects revoked tokens, and passes a Session down
// via the request context.
func Middleware(codec *Codec, revoked RevocationList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := BearerToken(r)
			if tokenStr == "" {
				writeUnauthorized(w, "Missing auth token")
				return
			}

			claims, err := codec.Validate(tokenStr)
			if err != nil {
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					// Fail closed: an unreachable revocation store must
					// not let revoked tokens through.
					log.Error().Err(err).Msg("Revocation check failed")
					writeUnauthorized(w, "Invalid or expired token")
					return
				}
				if isRevoked {
					writeUnauthorized(w, "Invalid or expired token")
					return
				}
			}

			session := &Session{
				Subject: claims.UserID,
				TokenID: claims.ID,
				Token:   tokenStr,
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// BearerToken extracts the token from the Authorization header, or ""
// when absent.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, "Bearer ", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
