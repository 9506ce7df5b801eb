package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clinicbook/clinicbook-api/middleware"
	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// endpointTestModels is the standard set of models migrated for endpoint tests.
var endpointTestModels = []interface{}{
	&model.User{},
	&model.Appointment{},
	&model.MedicalRecord{},
	&model.Session{},
	&model.SecurityLog{},
}

var testDBCounter int64

// setupEndpointTest returns a gin engine and an isolated in-memory database
// with all models migrated. The JWT secret is pinned for the test.
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.SetJWTSecret("test-secret-123")

	dsn := fmt.Sprintf("file:endpointdb_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test DB: %v", err)
	}
	if err := db.AutoMigrate(endpointTestModels...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	mountAPI(r)
	return r, db
}

// mountAPI registers the full route table the way main does.
func mountAPI(r *gin.Engine) {
	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", Register)
	auth.POST("/login", Login)
	auth.DELETE("/logout", middleware.Authenticate(), Logout)

	user := api.Group("/user", middleware.Authenticate())
	user.GET("/profile", GetProfile)
	user.PUT("/profile", UpdateProfile)

	doctors := api.Group("/doctors", middleware.Authenticate())
	doctors.GET("", ListDoctors)
	doctors.GET("/:id", GetDoctorByID)

	appointments := api.Group("/appointments", middleware.Authenticate())
	appointments.POST("", middleware.PatientOnly(), BookAppointment)
	appointments.GET("/all", middleware.AdminOnly(), ListAllAppointments)
	appointments.GET("/my", ListMyAppointments)
	appointments.PUT("/edit/:id", EditAppointment)
	appointments.PUT("/:id", UpdateAppointmentStatus)
	appointments.DELETE("/:id", DeleteAppointment)

	records := api.Group("/records", middleware.Authenticate())
	records.POST("", middleware.DoctorOnly(), CreateMedicalRecord)
	records.GET("/patient/:id", ListRecordsByPatient)
	records.GET("/doctor/:id", ListRecordsByDoctor)
	records.GET("/appointment/:id", ListRecordsByAppointment)
	records.PUT("/:id", UpdateMedicalRecord)
	records.DELETE("/:id", DeleteMedicalRecord)

	admin := api.Group("/admin", middleware.Authenticate(), middleware.AdminOnly())
	admin.GET("/patients", ListPatients)
	admin.GET("/doctors", ListAllDoctors)
	admin.GET("/doctors/unapproved", ListUnapprovedDoctors)
	admin.GET("/doctors/approved", ListApprovedDoctors)
	admin.PUT("/approve-doctor/:id", ApproveDoctor)
	admin.PUT("/reject-doctor/:id", RejectDoctor)
	admin.DELETE("/delete-user/:id", DeleteUser)
	admin.GET("/stats", GetAdminStats)

	dashboard := api.Group("/dashboard", middleware.Authenticate())
	dashboard.GET("/patient", middleware.PatientOnly(), PatientDashboard)
	dashboard.GET("/doctor", middleware.DoctorOnly(), DoctorDashboard)
	dashboard.GET("/admin", middleware.AdminOnly(), AdminDashboard)
}

type testUserSpec struct {
	Name           string
	Email          string
	Phone          string
	Password       string
	Role           string
	Specialization string
	Approved       bool
	Rejected       bool
}

var testPhoneCounter int64 = 9000000000

func nextTestPhone() string {
	return fmt.Sprintf("%d", atomic.AddInt64(&testPhoneCounter, 1))
}

// createTestUser inserts a user with a real argon2 hash so login works.
func createTestUser(t *testing.T, db *gorm.DB, spec testUserSpec) model.User {
	t.Helper()
	if spec.Password == "" {
		spec.Password = "password123"
	}
	if spec.Phone == "" {
		spec.Phone = nextTestPhone()
	}
	salt, err := util.GenerateSalt()
	if err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	hashed, err := util.HashPasswordArgon2(spec.Password, salt)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := model.User{
		Name:           spec.Name,
		Email:          spec.Email,
		Phone:          spec.Phone,
		Password:       hashed,
		PasswordSalt:   salt,
		Role:           spec.Role,
		Specialization: spec.Specialization,
		IsApproved:     spec.Approved,
		IsRejected:     spec.Rejected,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestPatient(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	return createTestUser(t, db, testUserSpec{Name: "Test Patient", Email: email, Role: model.RolePatient})
}

func createTestDoctor(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	return createTestUser(t, db, testUserSpec{
		Name: "Test Doctor", Email: email, Role: model.RoleDoctor,
		Specialization: "Cardiology", Approved: true,
	})
}

func createTestAdmin(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	return createTestUser(t, db, testUserSpec{Name: "Test Admin", Email: email, Role: model.RoleAdmin})
}

// tokenFor mints a bearer token for the user, same claims as the login flow.
func tokenFor(t *testing.T, user model.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(util.GetJWTSecretByte())
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// doRequest performs a JSON request against the test router. An empty token
// leaves the Authorization header unset.
func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// parseResponse decodes the standard response envelope.
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	resp := parseResponse(t, w)
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response data is not an object: %q", w.Body.String())
	}
	return data
}

func responseDataList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	resp := parseResponse(t, w)
	if resp["data"] == nil {
		return nil
	}
	list, ok := resp["data"].([]interface{})
	if !ok {
		t.Fatalf("response data is not a list: %q", w.Body.String())
	}
	return list
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, w.Code, "unexpected status, body: %s", w.Body.String())
}
