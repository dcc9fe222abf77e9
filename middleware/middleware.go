package middleware

import (
	"context"
	"net/http"
	"strings"

	"collab-project/backend/management-service/logging"
	"collab-project/backend/management-service/models"
	"collab-project/backend/management-service/utils"
)

type contextKey string

const claimsKey contextKey = "claims"

// JWTAuth validates the bearer token and stores its claims in the request
// context for the role gate and the handlers.
func JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			logging.Logger.Warnf("Event ID: JWT_AUTH_BEARER_PREFIX_MISSING, Description: Bearer prefix missing in Authorization header for request to %s %s", r.Method, r.URL.Path)
		}

		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows the request through only when the authenticated caller
// holds one of the given roles. Must run after JWTAuth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthenticated", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if string(role) == claims.Role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logging.Logger.Warnf("Event ID: RBAC_FORBIDDEN, Description: Role %s not allowed for request to %s %s", claims.Role, r.Method, r.URL.Path)
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*utils.Claims)
	return claims, ok
}

// ViewerRole reports the caller's role, defaulting to NORMAL when the request
// carries no claims (public reads).
func ViewerRole(ctx context.Context) models.Role {
	if claims, ok := ClaimsFromContext(ctx); ok {
		if role, err := models.ParseRole(claims.Role); err == nil {
			return role
		}
	}
	return models.RoleNormal
}
