package endpoint

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/clinicbook/clinicbook-api/config"
	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

var phonePattern = regexp.MustCompile(`^\d{10}$`)

type RegisterRequest struct {
	Name           string `json:"name" binding:"required" example:"John Doe"`
	Email          string `json:"email" binding:"required,email" example:"john@example.com"`
	Phone          string `json:"phone" binding:"required" example:"9834729450"`
	Password       string `json:"password" binding:"required,min=6" example:"password123"`
	Age            int    `json:"age" example:"34"`
	Gender         string `json:"gender" example:"Female"`
	Role           string `json:"role" example:"Patient"`
	Specialization string `json:"specialization" example:"Cardiology"`
}

type AuthResponse struct {
	Token string         `json:"token,omitempty" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  model.UserInfo `json:"user"`
}

// Register godoc
// @Summary      Register a new account
// @Description  Create a Patient, Doctor or Admin account. Doctor accounts start unapproved and receive no token until an admin approves them.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} util.APIResponse{data=AuthResponse} "Registration successful"
// @Failure      400 {object} util.APIResponse "Invalid request or duplicate email/phone"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/auth/register [post]
func Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	if !validateRegistration(c, &req) {
		return
	}
	if !ensureEmailAvailable(c, db, req.Email) {
		return
	}
	if !ensurePhoneAvailable(c, db, req.Phone) {
		return
	}

	hashedPassword, salt, ok := hashPasswordOrRespond(c, req.Password)
	if !ok {
		return
	}

	newUser := model.User{
		Name:           util.NormalizeName(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		Password:       hashedPassword,
		PasswordSalt:   salt,
		Age:            req.Age,
		Gender:         req.Gender,
		Role:           req.Role,
		Specialization: req.Specialization,
	}
	if err := db.Create(&newUser).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create new user", Err: err})
		return
	}

	ci := clientInfoFromContext(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventRegisterSuccess,
		UserID:    fmt.Sprintf("%d", newUser.ID),
		Email:     newUser.Email,
		IP:        ci.IP,
		UserAgent: ci.Agent,
		Message:   fmt.Sprintf("User registered with role %s", newUser.Role),
	})

	// Doctors wait for admin approval and get no token at registration.
	if newUser.Role == model.RoleDoctor {
		util.CallSuccessCreated(c, util.APISuccessParams{
			Msg:  "Registration successful. Your account is pending admin approval.",
			Data: AuthResponse{User: toUserInfo(newUser)},
		})
		return
	}

	tokenString, ok := createTokenOrRespond(c, newUser)
	if !ok {
		return
	}
	if !recordLoginSession(c, db, newUser, tokenString) {
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{
		Msg:  "Registration successful",
		Data: AuthResponse{Token: tokenString, User: toUserInfo(newUser)},
	})
}

func validateRegistration(c *gin.Context, req *RegisterRequest) bool {
	fail := func(reason string) bool {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request payload",
			Err: fmt.Errorf("%s", reason),
		})
		return false
	}

	if strings.TrimSpace(req.Name) == "" {
		return fail("name cannot be empty")
	}
	if !phonePattern.MatchString(req.Phone) {
		return fail("phone must be exactly 10 digits")
	}
	if req.Gender != "" && !util.Contains(req.Gender, model.Genders) {
		return fail("gender must be one of Male, Female or Other")
	}
	if req.Role == "" {
		req.Role = model.RolePatient
	}
	if !util.Contains(req.Role, []string{model.RolePatient, model.RoleDoctor, model.RoleAdmin}) {
		return fail("unknown role")
	}
	if req.Role == model.RoleDoctor && strings.TrimSpace(req.Specialization) == "" {
		return fail("specialization is required for doctors")
	}
	return true
}

func ensureEmailAvailable(c *gin.Context, db *gorm.DB, email string) bool {
	var existing model.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&existing).Error
	if err != gorm.ErrRecordNotFound {
		if err == nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already registered", Err: fmt.Errorf("email already registered")})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return false
	}
	return true
}

func ensurePhoneAvailable(c *gin.Context, db *gorm.DB, phone string) bool {
	var existing model.User
	err := db.Where("phone = ?", phone).First(&existing).Error
	if err != gorm.ErrRecordNotFound {
		if err == nil {
			util.CallUserError(c, util.APIErrorParams{Msg: "Phone number already registered", Err: fmt.Errorf("phone number already registered")})
			return false
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return false
	}
	return true
}

func hashPasswordOrRespond(c *gin.Context, plain string) (string, string, bool) {
	salt, err := util.GenerateSalt()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to generate password salt", Err: err})
		return "", "", false
	}
	hashed, err := util.HashPasswordArgon2(plain, salt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return "", "", false
	}
	return hashed, salt, true
}

func createTokenOrRespond(c *gin.Context, user model.User) (string, bool) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString(util.GetJWTSecretByte())
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return "", false
	}
	return tokenString, true
}

// recordLoginSession persists the session row and mirrors it into Redis.
// The DB row is authoritative; Redis writes are best-effort.
func recordLoginSession(c *gin.Context, db *gorm.DB, user model.User, token string) bool {
	ci := clientInfoFromContext(c)
	session := model.Session{
		UserID:       user.ID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(tokenTTL),
		ClientIP:     ci.IP,
		Browser:      ci.Agent,
	}
	if err := db.Create(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return false
	}

	if rdb := config.GetRedisClient(); rdb != nil {
		exp := time.Until(session.ExpiresAt)
		_ = rdb.Set(context.Background(), fmt.Sprintf("session:%s", token), fmt.Sprintf("%d:%s", user.ID, user.Role), exp).Err()
		_ = util.AddSessionToUserSet(user.ID, token)
	}
	return true
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"john@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password. Unapproved or rejected doctors are refused a token.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=AuthResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid email or password"
// @Failure      403 {object} util.APIResponse "Doctor account not approved"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfoFromContext(c)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user model.User
	err := db.Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "user not found")
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid credentials")})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	match, err := util.VerifyPassword(req.Password, user.Password, user.PasswordSalt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return
	}
	if !match {
		util.LogLoginFailure(email, ci.IP, ci.Agent, "invalid password")
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid email or password", Err: fmt.Errorf("invalid credentials")})
		return
	}

	// Doctors only get a token once approved and not rejected.
	if user.Role == model.RoleDoctor {
		if user.IsRejected {
			util.LogLoginFailure(email, ci.IP, ci.Agent, "doctor account rejected")
			util.CallUserForbidden(c, util.APIErrorParams{
				Msg: "Your doctor account has been rejected by the admin",
				Err: fmt.Errorf("doctor account rejected"),
			})
			return
		}
		if !user.IsApproved {
			util.LogLoginFailure(email, ci.IP, ci.Agent, "doctor account pending approval")
			util.CallUserForbidden(c, util.APIErrorParams{
				Msg: "Your doctor account is pending admin approval",
				Err: fmt.Errorf("doctor account not approved"),
			})
			return
		}
	}

	tokenString, ok := createTokenOrRespond(c, user)
	if !ok {
		return
	}
	if !recordLoginSession(c, db, user, tokenString) {
		return
	}

	util.LogLoginSuccess(user.ID, user.Email, ci.IP, ci.Agent)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Login successful",
		Data: AuthResponse{Token: tokenString, User: toUserInfo(user)},
	})
}

// Logout godoc
// @Summary      User logout
// @Description  Invalidate the caller's current session token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Logout successful"
// @Failure      400 {object} util.APIResponse "Session not found"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/auth/logout [delete]
func Logout(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

	var session model.Session
	if err := db.Where("session_token = ? AND user_id = ?", token, caller.ID).First(&session).Error; err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Session not found", Err: err})
		return
	}
	if err := db.Delete(&session).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
		return
	}

	if rdb := config.GetRedisClient(); rdb != nil {
		_ = rdb.Del(context.Background(), fmt.Sprintf("session:%s", token)).Err()
		_ = util.RemoveSessionTokenFromUserSet(caller.ID, token)
	}

	ci := clientInfoFromContext(c)
	util.LogLogout(caller.ID, caller.Email, ci.IP, ci.Agent)
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logout successful"})
}
