package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newInMemoryDB creates an in-memory sqlite DB and runs required migrations for tests.
func newInMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Session{}); err != nil {
		t.Fatalf("failed to auto-migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role string) model.User {
	t.Helper()
	user := model.User{
		Name:     "Test User",
		Email:    role + "@example.com",
		Phone:    "123456789" + role[:1],
		Password: "hashedpassword",
		Role:     role,
	}
	if role == model.RoleDoctor {
		user.IsApproved = true
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func mintToken(t *testing.T, userID uint, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString(util.GetJWTSecretByte())
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func runAuthenticatedRequest(db *gorm.DB, authHeader string, guards ...gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if db != nil {
		r.Use(DatabaseMiddleware(db))
	}
	handlers := append([]gin.HandlerFunc{Authenticate()}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	r.GET("/test", handlers...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	util.SetJWTSecret("test-secret-123")
	db := newInMemoryDB(t)

	w := runAuthenticatedRequest(db, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	util.SetJWTSecret("test-secret-123")
	db := newInMemoryDB(t)

	w := runAuthenticatedRequest(db, "Token abc")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	util.SetJWTSecret("test-secret-123")
	db := newInMemoryDB(t)

	w := runAuthenticatedRequest(db, "Bearer not-a-token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	util.SetJWTSecret("test-secret-123")
	db := newInMemoryDB(t)
	user := createTestUser(t, db, model.RolePatient)

	token := mintToken(t, user.ID, -time.Hour)
	w := runAuthenticatedRequest(db, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	util.SetJWTSecret("secret-a")
	db := newInMemoryDB(t)
	user := createTestUser(t, db, model.RolePatient)
	token := mintToken(t, user.ID, time.Hour)

	util.SetJWTSecret("secret-b")
	w := runAuthenticatedRequest(db, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token signed with old secret, got %d", w.Code)
	}
}

func TestAuthenticate_UserNotFound(t *testing.T) {
	util.SetJWTSecret("test-secret-123")
	db := newInMemoryDB(t)

	token := mintToken(t, 9999, time.Hour)
	w := runAuthenticatedRequest(db, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing subject, got %d", w.Code)
	}
}

func TestAuthenticate_Success(t *testing.T) {
	util.SetJWTSecret("test-secret-123")
	db := newInMemoryDB(t)
	user := createTestUser(t, db, model.RolePatient)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DatabaseMiddleware(db))
	r.GET("/test", Authenticate(), func(c *gin.Context) {
		current, ok := GetCurrentUser(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no user in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": current.ID, "role": current.Role})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, user.ID, time.Hour))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRoleGuards(t *testing.T) {
	util.SetJWTSecret("test-secret-123")

	tests := []struct {
		name     string
		guard    gin.HandlerFunc
		role     string
		expected int
	}{
		{"admin guard allows admin", AdminOnly(), model.RoleAdmin, http.StatusOK},
		{"admin guard rejects patient", AdminOnly(), model.RolePatient, http.StatusForbidden},
		{"admin guard rejects doctor", AdminOnly(), model.RoleDoctor, http.StatusForbidden},
		{"doctor guard allows doctor", DoctorOnly(), model.RoleDoctor, http.StatusOK},
		{"doctor guard rejects patient", DoctorOnly(), model.RolePatient, http.StatusForbidden},
		{"patient guard allows patient", PatientOnly(), model.RolePatient, http.StatusOK},
		{"patient guard rejects admin", PatientOnly(), model.RoleAdmin, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newInMemoryDB(t)
			user := createTestUser(t, db, tt.role)
			token := mintToken(t, user.ID, time.Hour)

			w := runAuthenticatedRequest(db, "Bearer "+token, tt.guard)
			if w.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestDatabaseMiddlewareAndGetDB(t *testing.T) {
	db := newInMemoryDB(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DatabaseMiddleware(db))
	r.GET("/test", func(c *gin.Context) {
		if GetDB(c) == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetDBWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if GetDB(c) != nil {
		t.Fatalf("expected nil DB when middleware not installed")
	}
}
