package model

import (
	"fmt"

	"gorm.io/gorm"
)

// User roles. Doctor accounts additionally carry the approval flag pair.
const (
	RolePatient = "Patient"
	RoleDoctor  = "Doctor"
	RoleAdmin   = "Admin"
)

// Genders accepted at registration.
var Genders = []string{"Male", "Female", "Other"}

// User represents a patient, doctor or admin account
// @Description User account information
type User struct {
	gorm.Model
	Name           string `json:"name" gorm:"column:name;not null" example:"John Doe"`
	Email          string `json:"email" gorm:"column:email;uniqueIndex;size:191;not null" example:"john@example.com"`
	Phone          string `json:"phone" gorm:"column:phone;uniqueIndex;size:20;not null" example:"9834729450"`
	Password       string `json:"-" gorm:"column:password;not null"`
	PasswordSalt   string `json:"-" gorm:"column:password_salt"`
	Age            int    `json:"age" gorm:"column:age" example:"34"`
	Gender         string `json:"gender" gorm:"column:gender;size:10" example:"Female"`
	Role           string `json:"role" gorm:"column:role;size:10;default:'Patient'" example:"Patient"`
	Specialization string `json:"specialization,omitempty" gorm:"column:specialization" example:"Cardiology"`
	IsApproved     bool   `json:"is_approved" gorm:"column:is_approved;default:false" example:"false"`
	IsRejected     bool   `json:"is_rejected" gorm:"column:is_rejected;default:false" example:"false"`
}

// BeforeSave blanks the doctor-only fields for non-doctor accounts so the
// approval flag pair and specialization are only ever meaningful on doctors.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role != RoleDoctor {
		u.Specialization = ""
		u.IsApproved = false
		u.IsRejected = false
	}
	return nil
}

// UserInfo is the password-free projection used by listing endpoints.
// @Description User information without credentials
type UserInfo struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Role           string `json:"role"`
	Specialization string `json:"specialization,omitempty"`
	IsApproved     bool   `json:"is_approved"`
	IsRejected     bool   `json:"is_rejected"`
}

// SeedAdmin creates the bootstrap admin account if no admin exists yet.
// The password must already be hashed; hashing lives in util and model must
// not depend on it.
func SeedAdmin(db *gorm.DB, hashedPassword, salt string) error {
	var existing User
	err := db.Where("role = ?", RoleAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	admin := User{
		Name:         "Admin User",
		Email:        "adminuser@clinicbook.local",
		Phone:        "9834729450",
		Password:     hashedPassword,
		PasswordSalt: salt,
		Role:         RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}
