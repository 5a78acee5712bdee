// auth.go - Session token authentication and role-based access control
// This file implements authentication and authorization for the API
//
// Authentication Flow:
// 1. Extract the session token from the Authorization header (or the __session cookie)
// 2. Validate token signature and expiration
// 3. Extract the provider user ID from the "sub" claim
// 4. Load the user from the database (role is never read from the token)
// 5. Store the resolved caller in context for handlers
//
// Authorization Flow:
// 1. Run authentication first
// 2. Compare the caller's stored role with the roles allowed on the route
// 3. Allow/deny access based on role

package middleware // Declares the package name

import ( // Import required packages
	"errors"   // Sentinel checks
	"fmt"      // Error formatting
	"net/http" // HTTP status codes (401, 403, etc.)
	"strings"  // String operations (for header parsing)

	"go-marketplace-backend/database" // Database connection (for user queries)
	"go-marketplace-backend/models"   // User model (for role checking)
	"go-marketplace-backend/services" // Caller identity passed to the service layer

	"github.com/gin-gonic/gin"     // Gin web framework (for middleware)
	"github.com/golang-jwt/jwt/v5" // JWT library (for token validation)
	"gorm.io/gorm"                 // Record-not-found sentinel
)

const (
	callerKey     = "caller"    // Gin context key holding *services.Caller
	sessionCookie = "__session" // Cookie carrying the session token for browser requests
)

var (
	errMissingToken = errors.New("missing or invalid token")
	errInvalidToken = errors.New("invalid token")
	errUnknownUser  = errors.New("user not found")
)

// resolveCaller - Parses the session token of the request and loads its user
func resolveCaller(c *gin.Context, secret string) (*services.Caller, error) {
	// STEP 1: Extract the token
	// API clients use "Authorization: Bearer <token>", browsers send the session cookie
	tokenStr := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenStr = strings.TrimPrefix(header, "Bearer ") // Remove 'Bearer ' prefix
	} else if cookie, err := c.Cookie(sessionCookie); err == nil {
		tokenStr = cookie
	}
	if tokenStr == "" {
		return nil, errMissingToken
	}

	// STEP 2: Parse and validate the token (HS256 only)
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil // Provide secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	userID, err := token.Claims.GetSubject() // Provider user id
	if err != nil || userID == "" {
		return nil, errInvalidToken
	}

	// STEP 3: Load the user; the stored role is authoritative
	var user models.User
	err = database.DB.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &services.Caller{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// authenticate - Resolves the caller or aborts with 401 (500 on database failure)
// It never calls c.Next, so middlewares can chain it before their own checks
func authenticate(c *gin.Context, secret string) bool {
	caller, err := resolveCaller(c, secret)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, errMissingToken) && !errors.Is(err, errInvalidToken) && !errors.Is(err, errUnknownUser) {
			status = http.StatusInternalServerError // database failure
		}
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return false
	}
	c.Set(callerKey, caller)        // Store caller in Gin context
	c.Set("user_id", caller.UserID) // Kept for handlers that only need the id
	return true
}

// authorize - Aborts with 403 unless the caller holds one of roles
func authorize(c *gin.Context, roles ...models.Role) bool {
	caller := CallerFrom(c)
	if caller == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMissingToken.Error()})
		return false
	}
	for _, r := range roles {
		if caller.Role == r {
			return true
		}
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("%s access required", strings.ToLower(string(roles[0])))})
	return false
}

// AuthMiddleware - Returns a Gin middleware that requires a valid session
// Aborts with 401 when the token is missing, invalid or names an unknown user
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, secret) {
			return
		}
		c.Next() // Continue to next handler (authentication successful)
	}
}

// OptionalAuth - Resolves the caller when a valid session is present, never aborts
// Used by the dashboard routes, which redirect anonymous visitors instead of failing
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if caller, err := resolveCaller(c, secret); err == nil {
			c.Set(callerKey, caller)
			c.Set("user_id", caller.UserID)
		}
		c.Next()
	}
}

// RequireRole - Returns a Gin middleware allowing only the given roles
// Must run after AuthMiddleware
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, roles...) {
			return
		}
		c.Next()
	}
}

// AdminMiddleware - Authentication plus the ADMIN role check
// It implements role-based access control (RBAC) for admin endpoints
func AdminMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// STEP 1: Authenticate (ensures the user exists before checking their role)
		if !authenticate(c, secret) {
			return // Exit early - authentication failed
		}
		// STEP 2: Check the stored role
		// Only users with role ADMIN can access admin endpoints
		if !authorize(c, models.RoleAdmin) {
			return
		}
		c.Next() // Continue to next handler (admin access granted)
	}
}

// CallerFrom - Returns the caller resolved for this request, or nil when anonymous
func CallerFrom(c *gin.Context) *services.Caller {
	v, ok := c.Get(callerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*services.Caller)
	return caller
}
