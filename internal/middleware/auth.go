package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/scholarbee/scholarbee-api/internal/domain/user"
	"github.com/scholarbee/scholarbee-api/internal/pkg/jwt"
	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
)

type contextKey string

const principalKey contextKey = "principal"

// Auth returns middleware that validates JWT and stores the caller's principal
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return authWith(jwtService, bearerToken)
}

// WebSocketAuth is Auth that also accepts the token as ?token= for browser upgrades
func WebSocketAuth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return authWith(jwtService, func(r *http.Request) (string, bool) {
		if token, ok := bearerToken(r); ok {
			return token, true
		}
		token := r.URL.Query().Get("token")
		return token, token != ""
	})
}

func authWith(jwtService *jwt.Service, extract func(r *http.Request) (string, bool)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extract(r)
			if !ok {
				response.Unauthorized(w, "Missing or malformed authorization header")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}
			if !user.IsValidRole(claims.Role) {
				response.Forbidden(w, "Unknown role")
				return
			}

			ctx := WithPrincipal(r.Context(), user.NewPrincipal(claims.UserID, claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches a principal when a valid token is present and continues anonymously otherwise
func OptionalAuth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if claims, err := jwtService.ValidateAccessToken(token); err == nil && user.IsValidRole(claims.Role) {
					r = r.WithContext(WithPrincipal(r.Context(), user.NewPrincipal(claims.UserID, claims.Role)))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// WithPrincipal stores the principal in ctx
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal extracts the caller from context; the zero principal means anonymous
func GetPrincipal(ctx context.Context) user.Principal {
	if p, ok := ctx.Value(principalKey).(user.Principal); ok {
		return p
	}
	return user.Principal{}
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) uuid.UUID {
	return GetPrincipal(ctx).ID
}

// RequireRole returns middleware that checks user role
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetPrincipal(r.Context()).Role

			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

// RequireStudent returns middleware that requires student role
func RequireStudent() func(http.Handler) http.Handler {
	return RequireRole(user.RoleStudent)
}

// RequireSponsor returns middleware that requires sponsor role
func RequireSponsor() func(http.Handler) http.Handler {
	return RequireRole(user.RoleSponsor)
}
