package model

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing with the specified models.
// It automatically runs AutoMigrate on the provided models and returns the database connection.
// The database name is uniquified using the current Unix nanosecond timestamp to prevent
// cross-test contamination when tests run in the same process.
func setupTestDB(t *testing.T, modelName string, models ...interface{}) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_%s_%d?mode=memory&cache=shared", modelName, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("failed to auto-migrate models: %v", err)
		}
	}

	return db
}

// UserSpec describes the fields for creating a test User.
type UserSpec struct {
	Name           string
	Email          string
	Phone          string
	Role           string
	Specialization string
	IsApproved     bool
	IsRejected     bool
}

// mustCreateUser creates a User from spec and inserts it, failing the test on error.
func mustCreateUser(t *testing.T, db *gorm.DB, spec UserSpec) User {
	t.Helper()
	user := User{
		Name:           spec.Name,
		Email:          spec.Email,
		Phone:          spec.Phone,
		Password:       "hashed_password",
		PasswordSalt:   "salt",
		Role:           spec.Role,
		Specialization: spec.Specialization,
		IsApproved:     spec.IsApproved,
		IsRejected:     spec.IsRejected,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
