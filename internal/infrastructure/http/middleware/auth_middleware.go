package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/internal/infrastructure/cache"
	"github.com/meetsync-team/meetsync/pkg/jwt"
)

// sessionTTL bounds how long a resolved user profile is served from cache
const sessionTTL = 5 * time.Minute

// AuthMiddleware validates bearer tokens and resolves the calling user.
// Resolved profiles are cached keyed by user id to keep hot paths off the
// users table.
type AuthMiddleware struct {
	tokens *jwt.Manager
	users  repositories.UserRepository
	store  cache.Store
	logger *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *jwt.Manager, users repositories.UserRepository, store cache.Store, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
		store:  store,
		logger: logger,
	}
}

// EchoAuth returns an Echo middleware that validates the bearer token and
// sets "user" (*entities.User) and "user_id" (uuid.UUID) on the context
func (m *AuthMiddleware) EchoAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request())
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization token")
			}

			claims, err := m.tokens.ValidateAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			user, err := m.resolveUser(c.Request().Context(), claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unknown user")
			}

			c.Set("user", user)
			c.Set("user_id", user.ID)

			return next(c)
		}
	}
}

// RequireRole gates a route group on the listed roles. Must run after EchoAuth.
func (m *AuthMiddleware) RequireRole(roles ...entities.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// UserFrom retrieves the authenticated user from the Echo context
func UserFrom(c echo.Context) (*entities.User, bool) {
	user, ok := c.Get("user").(*entities.User)
	return user, ok
}

func (m *AuthMiddleware) resolveUser(ctx context.Context, claims *jwt.Claims) (*entities.User, error) {
	cacheKey := "session:user:" + claims.UserID.String()

	if cached, ok := m.store.Get(ctx, cacheKey); ok {
		var user entities.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
	}

	user, err := m.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(user); err == nil {
		if err := m.store.Set(ctx, cacheKey, string(encoded), sessionTTL); err != nil {
			m.logger.Warn("auth: session cache write failed", zap.Error(err))
		}
	}

	return user, nil
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	// cookie fallback for browser-initiated calls
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}
