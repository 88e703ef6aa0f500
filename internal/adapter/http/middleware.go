package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/careatlas/careatlas/internal/adapter/cache"
	"github.com/careatlas/careatlas/internal/domain"
	"github.com/careatlas/careatlas/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Identity is the caller as supplied by the external identity collaborator.
// The core trusts the role and performs authorization only.
type Identity struct {
	UserID string
	Role   domain.Role
}

type contextKey string

const identityKey contextKey = "identity"

// identityMiddleware extracts the caller identity. A Bearer token signed by
// the identity service (HMAC, sub + role claims) takes precedence; the
// X-User-ID / X-User-Role headers remain as the development fallback.
func identityMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := Identity{
				UserID: r.Header.Get("X-User-ID"),
				Role:   domain.Role(r.Header.Get("X-User-Role")),
			}

			if auth := r.Header.Get("Authorization"); jwtSecret != "" && strings.HasPrefix(auth, "Bearer ") {
				tokenString := strings.TrimPrefix(auth, "Bearer ")
				claims := jwt.MapClaims{}
				token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
					}
					return []byte(jwtSecret), nil
				})
				if err == nil && token.Valid {
					if sub, err := claims.GetSubject(); err == nil && sub != "" {
						identity.UserID = sub
					}
					if role, ok := claims["role"].(string); ok && role != "" {
						identity.Role = domain.Role(role)
					}
				}
			}

			if identity.Role == "" {
				identity.Role = domain.RoleUser
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFrom retrieves the caller identity from the request context
func identityFrom(ctx context.Context) Identity {
	if identity, ok := ctx.Value(identityKey).(Identity); ok {
		return identity
	}
	return Identity{Role: domain.RoleUser}
}

// authorize enforces the CanPerform predicate at the boundary
func authorize(w http.ResponseWriter, r *http.Request, action domain.Action) (Identity, bool) {
	identity := identityFrom(r.Context())
	if !domain.CanPerform(identity.Role, action) {
		writeError(w, apperror.NewForbidden("role is not allowed to perform this action"))
		return identity, false
	}
	return identity, true
}

func loggingMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).String(),
			}).Info("Request handled")
		})
	}
}

// corsMiddleware allows the configured exact origins, echoing back the one
// that matched. A single "*" entry allows any origin.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAny := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAny = true
			continue
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always vary on Origin so caches don't mix responses
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if allowAny {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" {
				if _, ok := allowed[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, If-Match, X-User-ID, X-User-Role")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func recoveryMiddleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithField("panic", rec).Error("Panic recovered")
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware guards the public search surface per client IP
func rateLimitMiddleware(limiter cache.RateLimiter, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			allowed, err := limiter.Allow(r.Context(), host)
			if err != nil {
				// Limiter trouble must not take search down with it.
				logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
				allowed = true
			}
			if !allowed {
				writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
					"error": map[string]string{"code": "RATE_LIMITED", "message": "too many requests"},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
