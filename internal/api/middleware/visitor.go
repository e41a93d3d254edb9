package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Picces04/ToyStore-Client/internal/auth"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VisitorHeader carries the visitor token for clients that do not keep cookies.
const VisitorHeader = "X-Visitor-Token"

type contextKey string

const (
	visitorContextKey contextKey = "visitor"
	entryContextKey   contextKey = "log_entry"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts the visitor token from the cookie or the header
func ExtractToken(r *http.Request, cookieName string) string {
	// Try cookie first (for browser)
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return r.Header.Get(VisitorHeader)
}

// Visitor resolves the visitor ID from a signed token and mints a new visitor
// when the token is missing, expired or forged. Minted tokens are returned
// both as a cookie and in the VisitorHeader response header.
func Visitor(tokens *auth.VisitorTokens, cookieName string, log zerolog.Logger) func(http.Handler) http.Handler {
	log = log.With().Str("component", "visitor").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := ExtractToken(r, cookieName); tokenString != "" {
				visitorID, err := tokens.Validate(tokenString)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), visitorID)))
					return
				}
				log.Debug().Err(err).Msg("visitor token rejected")
			}

			visitorID := uuid.NewString()
			token, expiry, err := tokens.Issue(visitorID)
			if err != nil {
				log.Error().Err(err).Msg("issue visitor token")
				respondError(w, "internal server error", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    token,
				Path:     "/",
				Expires:  expiry,
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(VisitorHeader, token)

			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), visitorID)))
		})
	}
}

func WithVisitorID(ctx context.Context, visitorID string) context.Context {
	if e, ok := ctx.Value(entryContextKey).(*logEntry); ok {
		e.visitor = visitorID
	}
	return context.WithValue(ctx, visitorContextKey, visitorID)
}

// VisitorID returns the visitor resolved by Visitor, or "".
func VisitorID(ctx context.Context) string {
	id, _ := ctx.Value(visitorContextKey).(string)
	return id
}
