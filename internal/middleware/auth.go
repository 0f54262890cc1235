package middleware

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"fabrikaops/internal/access"
	"fabrikaops/internal/model"
	"fabrikaops/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// UserSource loads the authenticated user with roles in stored order.
type UserSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	LoadRoles(ctx context.Context, user *model.User) error
}

// CapabilityResolver resolves the HR capability record for a user.
type CapabilityResolver interface {
	ResolveForUser(ctx context.Context, user *model.User, forManualEntry bool) (access.Capabilities, error)
}

var (
	authUsers    UserSource
	authResolver CapabilityResolver
)

// InitAccessMiddleware sets the user source and capability resolver used by
// RequireAuth and HRAccess.
func InitAccessMiddleware(users UserSource, resolver CapabilityResolver) {
	authUsers = users
	authResolver = resolver
}

func extractToken(c *gin.Context) (string, bool) {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth validates the JWT, loads the user with roles in stored order and
// puts it on the context as "currentUser". Passive users are rejected.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token subject"))
			return
		}

		user, err := authUsers.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User not found"))
			return
		}
		if user.Status != model.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Account is not active"))
			return
		}
		if err := authUsers.LoadRoles(c.Request.Context(), user); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to load user roles"))
			return
		}

		c.Set("userID", user.ID.String())
		c.Set("currentUser", user)

		c.Next()
	}
}

// RequireRole allows only users holding at least one of the named roles. Must
// run after RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		for _, r := range user.Roles {
			for _, allowed := range allowedRoles {
				if r.Name == allowed {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// CurrentUser reads the authenticated user set by RequireAuth.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}

// Capabilities reads the HR capability record set by HRAccess.
func Capabilities(c *gin.Context) access.Capabilities {
	v, ok := c.Get("hrCapabilities")
	if !ok {
		return access.Capabilities{}
	}
	caps, _ := v.(access.Capabilities)
	return caps
}

// --- HR capability middleware ---

// capCacheEntry stores a resolved capability record for a user with TTL
type capCacheEntry struct {
	caps      access.Capabilities
	expiresAt time.Time
}

var capCache sync.Map // userID string -> capCacheEntry

const capCacheTTL = 5 * time.Minute

// HRAccess resolves the user's HR capability record and attaches it to the
// context. Denied users get the resolver's fixed message.
func HRAccess() gin.HandlerFunc {
	return hrAccess(false)
}

// HRAccessManualEntry is HRAccess plus the manual-entry bypass. Mount it ONLY
// on the user-listing route: the ?forManualEntry=true marker resolves to a
// zero-capability record for users with no HR grant at all, so any other route
// behind it would let ungranted users through. The marker skips the cache
// since its result carries no grants regardless.
func HRAccessManualEntry() gin.HandlerFunc {
	return hrAccess(true)
}

func hrAccess(allowManualEntry bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		forManualEntry := allowManualEntry && c.Query("forManualEntry") == "true"

		if !forManualEntry {
			if entry, found := capCache.Load(user.ID.String()); found {
				cached := entry.(capCacheEntry)
				if time.Now().Before(cached.expiresAt) {
					c.Set("hrCapabilities", cached.caps)
					c.Next()
					return
				}
			}
		}

		caps, err := authResolver.ResolveForUser(c.Request.Context(), user, forManualEntry)
		if err != nil {
			if errors.Is(err, access.ErrForbidden) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
			return
		}

		if !forManualEntry {
			capCache.Store(user.ID.String(), capCacheEntry{
				caps:      caps,
				expiresAt: time.Now().Add(capCacheTTL),
			})
		}

		c.Set("hrCapabilities", caps)
		c.Next()
	}
}

// ClearCapabilityCache drops cached capability records for a specific user (or
// every user if empty). Called after grant or settings mutations.
func ClearCapabilityCache(userID string) {
	if userID == "" {
		capCache.Range(func(key, _ interface{}) bool {
			capCache.Delete(key)
			return true
		})
	} else {
		capCache.Delete(userID)
	}
}
