package endpoint

import (
	"fmt"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
)

// PatientDashboard godoc
// @Summary      Patient dashboard
// @Description  Counts for the caller plus a hint to book a first appointment when none exist yet.
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Dashboard data"
// @Failure      403 {object} util.APIResponse "Patient access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/dashboard/patient [get]
func PatientDashboard(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}

	var appointmentCount, recordCount int64
	if err := db.Model(&model.Appointment{}).Where("patient_id = ?", caller.ID).Count(&appointmentCount).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load dashboard", Err: err})
		return
	}
	if err := db.Model(&model.MedicalRecord{}).Where("patient_id = ?", caller.ID).Count(&recordCount).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load dashboard", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Dashboard fetched",
		Data: gin.H{
			"message":               fmt.Sprintf("Welcome back, %s", caller.Name),
			"appointment_count":     appointmentCount,
			"medical_record_count":  recordCount,
			"show_book_appointment": appointmentCount == 0,
		},
	})
}

// DoctorDashboard godoc
// @Summary      Doctor dashboard
// @Description  Appointment totals for the caller broken down by status.
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Dashboard data"
// @Failure      403 {object} util.APIResponse "Doctor access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/dashboard/doctor [get]
func DoctorDashboard(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}

	var total, pending, confirmed, cancelled int64
	if err := db.Model(&model.Appointment{}).Where("doctor_id = ?", caller.ID).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load dashboard", Err: err})
		return
	}
	statusCounts := []struct {
		status model.AppointmentStatus
		dst    *int64
	}{
		{model.StatusPending, &pending},
		{model.StatusConfirmed, &confirmed},
		{model.StatusCancelled, &cancelled},
	}
	for _, sc := range statusCounts {
		if err := db.Model(&model.Appointment{}).
			Where("doctor_id = ? AND status = ?", caller.ID, sc.status).
			Count(sc.dst).Error; err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load dashboard", Err: err})
			return
		}
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Dashboard fetched",
		Data: gin.H{
			"message":            fmt.Sprintf("Welcome back, Dr. %s", caller.Name),
			"total_appointments": total,
			"pending":            pending,
			"confirmed":          confirmed,
			"cancelled":          cancelled,
		},
	})
}

// AdminDashboard godoc
// @Summary      Admin dashboard
// @Description  Platform-wide counts for the admin landing page.
// @Tags         Dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Dashboard data"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/dashboard/admin [get]
func AdminDashboard(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var approvedDoctors, pendingDoctors, totalPatients, totalRecords int64
	counts := []struct {
		dst  *int64
		load func(dst *int64) error
	}{
		{&approvedDoctors, func(dst *int64) error {
			return db.Model(&model.User{}).Where("role = ? AND is_approved = ?", model.RoleDoctor, true).Count(dst).Error
		}},
		{&pendingDoctors, func(dst *int64) error {
			return db.Model(&model.User{}).Where("role = ? AND is_approved = ? AND is_rejected = ?", model.RoleDoctor, false, false).Count(dst).Error
		}},
		{&totalPatients, func(dst *int64) error {
			return db.Model(&model.User{}).Where("role = ?", model.RolePatient).Count(dst).Error
		}},
		{&totalRecords, func(dst *int64) error {
			return db.Model(&model.MedicalRecord{}).Count(dst).Error
		}},
	}
	for _, cnt := range counts {
		if err := cnt.load(cnt.dst); err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load dashboard", Err: err})
			return
		}
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Dashboard fetched",
		Data: gin.H{
			"approved_doctors":      approvedDoctors,
			"pending_doctors":       pendingDoctors,
			"total_patients":        totalPatients,
			"total_medical_records": totalRecords,
		},
	})
}
