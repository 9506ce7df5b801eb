package endpoint

import (
	"fmt"
	"strings"
	"time"

	"github.com/clinicbook/clinicbook-api/middleware"
	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// userSearchFilter applies the optional ?search filter over name and email.
func userSearchFilter(query *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return query
	}
	like := "%" + search + "%"
	return query.Where("name LIKE ? OR email LIKE ?", like, like)
}

func listUsersByRole(c *gin.Context, role string, extra func(*gorm.DB) *gorm.DB) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := db.Where("role = ?", role)
	if extra != nil {
		query = extra(query)
	}
	query = userSearchFilter(query, c.Query("search"))

	var users []model.User
	if err := query.Order("name asc").Find(&users).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch users", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Users fetched", Data: toUserInfoList(users)})
}

// ListPatients godoc
// @Summary      List patients
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Match against name or email"
// @Success      200 {object} util.APIResponse{data=[]model.UserInfo} "Patients"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/admin/patients [get]
func ListPatients(c *gin.Context) {
	listUsersByRole(c, model.RolePatient, nil)
}

// ListAllDoctors godoc
// @Summary      List all doctors
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Match against name or email"
// @Success      200 {object} util.APIResponse{data=[]model.UserInfo} "Doctors"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/admin/doctors [get]
func ListAllDoctors(c *gin.Context) {
	listUsersByRole(c, model.RoleDoctor, nil)
}

// ListUnapprovedDoctors godoc
// @Summary      List doctors awaiting approval
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.UserInfo} "Doctors"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/admin/doctors/unapproved [get]
func ListUnapprovedDoctors(c *gin.Context) {
	listUsersByRole(c, model.RoleDoctor, func(q *gorm.DB) *gorm.DB {
		return q.Where("is_approved = ? AND is_rejected = ?", false, false)
	})
}

// ListApprovedDoctors godoc
// @Summary      List approved doctors
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.UserInfo} "Doctors"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/admin/doctors/approved [get]
func ListApprovedDoctors(c *gin.Context) {
	listUsersByRole(c, model.RoleDoctor, func(q *gorm.DB) *gorm.DB {
		return q.Where("is_approved = ?", true)
	})
}

func loadDoctorOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.User, bool) {
	var doctor model.User
	err := db.Where("id = ? AND role = ?", id, model.RoleDoctor).First(&doctor).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{
			Msg: "Doctor not found",
			Err: fmt.Errorf("doctor %d not found", id),
		})
		return model.User{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch doctor", Err: err})
		return model.User{}, false
	}
	return doctor, true
}

// ApproveDoctor godoc
// @Summary      Approve a doctor account
// @Description  Set the doctor as approved and clear any rejection. Idempotent.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=model.UserInfo} "Doctor approved"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/admin/approve-doctor/{id} [put]
func ApproveDoctor(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}
	doctor, ok := loadDoctorOrRespond(c, db, id)
	if !ok {
		return
	}

	doctor.IsApproved = true
	doctor.IsRejected = false
	if err := db.Save(&doctor).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to approve doctor", Err: err})
		return
	}

	caller, _ := middleware.GetCurrentUser(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventDoctorApproved,
		UserID:    fmt.Sprintf("%d", caller.ID),
		Email:     caller.Email,
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("Doctor %d (%s) approved", doctor.ID, doctor.Email),
	})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor approved", Data: toUserInfo(doctor)})
}

// RejectDoctor godoc
// @Summary      Reject a doctor account
// @Description  Set the doctor as rejected and clear any approval. Idempotent.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=model.UserInfo} "Doctor rejected"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/admin/reject-doctor/{id} [put]
func RejectDoctor(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}
	doctor, ok := loadDoctorOrRespond(c, db, id)
	if !ok {
		return
	}

	doctor.IsRejected = true
	doctor.IsApproved = false
	if err := db.Save(&doctor).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to reject doctor", Err: err})
		return
	}

	caller, _ := middleware.GetCurrentUser(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventDoctorRejected,
		UserID:    fmt.Sprintf("%d", caller.ID),
		Email:     caller.Email,
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("Doctor %d (%s) rejected", doctor.ID, doctor.Email),
	})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor rejected", Data: toUserInfo(doctor)})
}

// DeleteUser godoc
// @Summary      Delete a user account
// @Description  Remove any user account and invalidate their sessions.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} util.APIResponse "User deleted"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      404 {object} util.APIResponse "User not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/admin/delete-user/{id} [delete]
func DeleteUser(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	var user model.User
	err := db.First(&user, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: fmt.Errorf("user %d not found", id)})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch user", Err: err})
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete user", Err: err})
		return
	}

	// Drop the user's sessions so stale tokens stop working immediately.
	db.Where("user_id = ?", user.ID).Delete(&model.Session{})
	_ = util.InvalidateUserSessions(user.ID)

	caller, _ := middleware.GetCurrentUser(c)
	util.LogSecurityEvent(util.SecurityEvent{
		EventType: util.EventUserDeleted,
		UserID:    fmt.Sprintf("%d", caller.ID),
		Email:     caller.Email,
		IP:        c.ClientIP(),
		Message:   fmt.Sprintf("User %d (%s) deleted", user.ID, user.Email),
	})

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "User deleted"})
}

type AdminStats struct {
	TotalUsers           int64 `json:"total_users"`
	TotalDoctors         int64 `json:"total_doctors"`
	PendingDoctors       int64 `json:"pending_doctors"`
	TotalAppointments    int64 `json:"total_appointments"`
	UpcomingAppointments int64 `json:"upcoming_appointments"`
}

// GetAdminStats godoc
// @Summary      Platform statistics
// @Description  Aggregate counts over users, doctors and appointments. Upcoming means dated today or later and not cancelled.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=AdminStats} "Stats"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/admin/stats [get]
func GetAdminStats(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var stats AdminStats
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&model.User{})},
		{&stats.TotalDoctors, db.Model(&model.User{}).Where("role = ?", model.RoleDoctor)},
		{&stats.PendingDoctors, db.Model(&model.User{}).Where("role = ? AND is_approved = ? AND is_rejected = ?", model.RoleDoctor, false, false)},
		{&stats.TotalAppointments, db.Model(&model.Appointment{})},
		{&stats.UpcomingAppointments, db.Model(&model.Appointment{}).
			Where("date >= ? AND status <> ?", time.Now().Format("2006-01-02"), model.StatusCancelled)},
	}
	for _, cnt := range counts {
		if err := cnt.query.Count(cnt.dst).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to compute stats", Err: err})
			return
		}
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Stats fetched", Data: stats})
}
