package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// Context keys used to pass request-scoped values between middleware and handlers.
const (
	DBKey       = "db"
	UserKey     = "current_user"
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PUT, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Content-Type", "application/json")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware stores the gorm DB handle in the request context so
// handlers can retrieve it with GetDB.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the request-scoped gorm DB handle, or nil if not set.
func GetDB(c *gin.Context) *gorm.DB {
	value, exists := c.Get(DBKey)
	if !exists {
		return nil
	}
	db, ok := value.(*gorm.DB)
	if !ok {
		return nil
	}
	return db
}

// Authenticate verifies the bearer token from the Authorization header,
// resolves the subject user and attaches it to the request context. Requests
// without a valid token are rejected before the handler runs.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Not authorized, no token",
				Err: fmt.Errorf("authorization header missing or malformed"),
			})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		userID, err := parseUserID(tokenString)
		if err != nil {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Token failed",
				Err: err,
			})
			c.Abort()
			return
		}

		db := GetDB(c)
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{
				Msg: "Database connection not available",
				Err: fmt.Errorf("db is nil"),
			})
			c.Abort()
			return
		}

		var user model.User
		if err := db.First(&user, userID).Error; err != nil {
			// The token was valid but the subject no longer exists; fail closed.
			util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), "", c.ClientIP(), c.Request.URL.Path, "token subject not found")
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: "Token failed",
				Err: fmt.Errorf("user not found"),
			})
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Set(UserRoleKey, user.Role)
		c.Next()
	}
}

// parseUserID validates the signed token and extracts the subject user id.
func parseUserID(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return util.GetJWTSecretByte(), nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}
	if exp, ok := claims["exp"].(float64); ok && time.Now().Unix() > int64(exp) {
		return 0, fmt.Errorf("token expired")
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return 0, fmt.Errorf("token missing user id")
	}
	return uint(rawID), nil
}

// GetCurrentUser returns the authenticated user attached by Authenticate.
func GetCurrentUser(c *gin.Context) (model.User, bool) {
	value, exists := c.Get(UserKey)
	if !exists {
		return model.User{}, false
	}
	user, ok := value.(model.User)
	return user, ok
}

// GetUserID returns the authenticated user's id, or (0, false) when unauthenticated.
func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// GetUserRole returns the authenticated user's role, or ("", false) when unauthenticated.
func GetUserRole(c *gin.Context) (string, bool) {
	value, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	return role, ok
}

// requireRole rejects the request with 403 unless the caller has the given role.
func requireRole(role, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole, ok := GetUserRole(c)
		if !ok || callerRole != role {
			userID, _ := GetUserID(c)
			util.LogUnauthorizedAccess(fmt.Sprintf("%d", userID), "", c.ClientIP(), c.Request.URL.Path, fmt.Sprintf("role %q required", role))
			util.CallUserForbidden(c, util.APIErrorParams{
				Msg: msg,
				Err: fmt.Errorf("access denied"),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminOnly allows only Admin callers through.
func AdminOnly() gin.HandlerFunc {
	return requireRole(model.RoleAdmin, "Admin access only")
}

// DoctorOnly allows only Doctor callers through.
func DoctorOnly() gin.HandlerFunc {
	return requireRole(model.RoleDoctor, "Doctor access only")
}

// PatientOnly allows only Patient callers through.
func PatientOnly() gin.HandlerFunc {
	return requireRole(model.RolePatient, "Patient access only")
}
