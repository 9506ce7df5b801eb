// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/clinicbook/clinicbook-api/config"
	"github.com/clinicbook/clinicbook-api/endpoint"
	"github.com/clinicbook/clinicbook-api/middleware"
	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// Load the configuration
	cfg := config.LoadConfig()

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Appointment{},
		&model.MedicalRecord{},
		&model.Session{},
		&model.SecurityLog{},
	); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	if err := seedAdmin(db); err != nil {
		log.Fatalf("Error seeding admin user: %v", err)
	}

	// Security events are persisted best-effort alongside stdout.
	util.SetSecurityLoggerDB(db)
	util.InitUserEmailCacheFromEnv()

	// Redis is optional; session mirroring and rate limiting degrade
	// gracefully without it.
	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, continuing without it: %v", err)
	}

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.EndpointCallLogger())

	// Basic HTTP handler for root path
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	registerRoutes(router)

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

// seedAdmin hashes the bootstrap password and creates the admin account if
// none exists yet.
func seedAdmin(db *gorm.DB) error {
	password := os.Getenv("ADMINPASSWORD")
	if password == "" {
		password = "admin123"
	}
	salt, err := util.GenerateSalt()
	if err != nil {
		return err
	}
	hashed, err := util.HashPasswordArgon2(password, salt)
	if err != nil {
		return err
	}
	return model.SeedAdmin(db, hashed, salt)
}

func registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	auth := api.Group("/auth", middleware.RateLimiter(middleware.RateLimitConfig{}))
	auth.POST("/register", endpoint.Register)
	auth.POST("/login", endpoint.Login)
	auth.DELETE("/logout", middleware.Authenticate(), endpoint.Logout)

	user := api.Group("/user", middleware.Authenticate())
	user.GET("/profile", endpoint.GetProfile)
	user.PUT("/profile", endpoint.UpdateProfile)

	doctors := api.Group("/doctors", middleware.Authenticate())
	doctors.GET("", endpoint.ListDoctors)
	doctors.GET("/:id", endpoint.GetDoctorByID)

	appointments := api.Group("/appointments", middleware.Authenticate())
	appointments.POST("", middleware.PatientOnly(), endpoint.BookAppointment)
	appointments.GET("/all", middleware.AdminOnly(), endpoint.ListAllAppointments)
	appointments.GET("/my", endpoint.ListMyAppointments)
	appointments.PUT("/edit/:id", endpoint.EditAppointment)
	appointments.PUT("/:id", endpoint.UpdateAppointmentStatus)
	appointments.DELETE("/:id", endpoint.DeleteAppointment)

	records := api.Group("/records", middleware.Authenticate())
	records.POST("", middleware.DoctorOnly(), endpoint.CreateMedicalRecord)
	records.GET("/patient/:id", endpoint.ListRecordsByPatient)
	records.GET("/doctor/:id", endpoint.ListRecordsByDoctor)
	records.GET("/appointment/:id", endpoint.ListRecordsByAppointment)
	records.PUT("/:id", endpoint.UpdateMedicalRecord)
	records.DELETE("/:id", endpoint.DeleteMedicalRecord)

	admin := api.Group("/admin", middleware.Authenticate(), middleware.AdminOnly())
	admin.GET("/patients", endpoint.ListPatients)
	admin.GET("/doctors", endpoint.ListAllDoctors)
	admin.GET("/doctors/unapproved", endpoint.ListUnapprovedDoctors)
	admin.GET("/doctors/approved", endpoint.ListApprovedDoctors)
	admin.PUT("/approve-doctor/:id", endpoint.ApproveDoctor)
	admin.PUT("/reject-doctor/:id", endpoint.RejectDoctor)
	admin.DELETE("/delete-user/:id", endpoint.DeleteUser)
	admin.GET("/stats", endpoint.GetAdminStats)

	dashboard := api.Group("/dashboard", middleware.Authenticate())
	dashboard.GET("/patient", middleware.PatientOnly(), endpoint.PatientDashboard)
	dashboard.GET("/doctor", middleware.DoctorOnly(), endpoint.DoctorDashboard)
	dashboard.GET("/admin", middleware.AdminOnly(), endpoint.AdminDashboard)
}
