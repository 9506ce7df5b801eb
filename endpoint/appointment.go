package endpoint

import (
	"fmt"
	"strings"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BookAppointmentRequest struct {
	DoctorID uint   `json:"doctor_id" binding:"required" example:"2"`
	Date     string `json:"date" binding:"required" example:"2025-01-10"`
	Time     string `json:"time" binding:"required" example:"09:00"`
	Reason   string `json:"reason" example:"checkup"`
}

// appointmentDetailQuery builds the base query joining appointments with the
// patient and doctor user rows so listings carry resolved names.
func appointmentDetailQuery(db *gorm.DB) *gorm.DB {
	return db.Table("appointments").
		Select("appointments.*, " +
			"patients.name AS patient_name, patients.email AS patient_email, " +
			"doctors.name AS doctor_name, doctors.email AS doctor_email, " +
			"doctors.specialization AS doctor_specialization").
		Joins("JOIN users AS patients ON patients.id = appointments.patient_id").
		Joins("JOIN users AS doctors ON doctors.id = appointments.doctor_id").
		Where("appointments.deleted_at IS NULL")
}

// BookAppointment godoc
// @Summary      Book an appointment
// @Description  Book an appointment with a doctor. The patient is always the caller and the status always starts as Pending.
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BookAppointmentRequest true "Appointment details"
// @Success      201 {object} util.APIResponse{data=model.Appointment} "Appointment booked"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      403 {object} util.APIResponse "Patient access only"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments [post]
func BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}

	var doctor model.User
	err := db.Where("id = ? AND role = ?", req.DoctorID, model.RoleDoctor).First(&doctor).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: fmt.Errorf("doctor %d not found", req.DoctorID)})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch doctor", Err: err})
		return
	}

	appointment := model.Appointment{
		PatientID: caller.ID,
		DoctorID:  doctor.ID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    model.StatusPending,
	}
	if err := db.Create(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to book appointment", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Appointment booked", Data: appointment})
}

// ListAllAppointments godoc
// @Summary      List all appointments
// @Description  Admin listing of every appointment with optional status, date and free-text search filters
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status"
// @Param        date query string false "Filter by exact date (YYYY-MM-DD)"
// @Param        search query string false "Match against patient/doctor name or email"
// @Success      200 {object} util.APIResponse{data=[]model.AppointmentDetail} "Appointments"
// @Failure      400 {object} util.APIResponse "Unknown status filter"
// @Failure      403 {object} util.APIResponse "Admin access only"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments/all [get]
func ListAllAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	query := appointmentDetailQuery(db)

	if status := c.Query("status"); status != "" {
		if !model.AppointmentStatus(status).Valid() {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Unknown appointment status",
				Err: fmt.Errorf("unknown status %q", status),
			})
			return
		}
		query = query.Where("appointments.status = ?", status)
	}
	if date := c.Query("date"); date != "" {
		query = query.Where("appointments.date = ?", date)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"patients.name LIKE ? OR patients.email LIKE ? OR doctors.name LIKE ? OR doctors.email LIKE ?",
			like, like, like, like,
		)
	}

	var appointments []model.AppointmentDetail
	if err := query.Order("appointments.date desc, appointments.time desc").Find(&appointments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments fetched", Data: appointments})
}

// ListMyAppointments godoc
// @Summary      List own appointments
// @Description  Appointments where the caller is the patient or the doctor, depending on their role
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.AppointmentDetail} "Appointments"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments/my [get]
func ListMyAppointments(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}

	query := appointmentDetailQuery(db)
	switch caller.Role {
	case model.RoleDoctor:
		query = query.Where("appointments.doctor_id = ?", caller.ID)
	default:
		query = query.Where("appointments.patient_id = ?", caller.ID)
	}

	var appointments []model.AppointmentDetail
	if err := query.Order("appointments.date desc, appointments.time desc").Find(&appointments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments fetched", Data: appointments})
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required" example:"Confirmed"`
}

// UpdateAppointmentStatus godoc
// @Summary      Update appointment status
// @Description  Set the appointment status. Allowed for admins and for the appointment's own doctor. Any transition between valid statuses is accepted.
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Appointment ID"
// @Param        request body UpdateAppointmentStatusRequest true "New status"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment updated"
// @Failure      400 {object} util.APIResponse "Unknown status"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments/{id} [put]
func UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	status := model.AppointmentStatus(req.Status)
	if !status.Valid() {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Unknown appointment status",
			Err: fmt.Errorf("unknown status %q", req.Status),
		})
		return
	}

	appointment, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	if caller.Role != model.RoleAdmin && !(caller.Role == model.RoleDoctor && appointment.DoctorID == caller.ID) {
		respondForbidden(c, caller, c.Request.URL.Path, "not admin or the appointment's doctor")
		return
	}

	appointment.Status = status
	if err := db.Save(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment updated", Data: appointment})
}

type EditAppointmentRequest struct {
	Date   string `json:"date" example:"2025-02-01"`
	Time   string `json:"time" example:"10:30"`
	Reason string `json:"reason" example:"follow-up"`
}

// EditAppointment godoc
// @Summary      Edit own appointment
// @Description  Reschedule or change the reason of an appointment. Only the patient who booked it may edit.
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Appointment ID"
// @Param        request body EditAppointmentRequest true "Fields to change"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments/edit/{id} [put]
func EditAppointment(c *gin.Context) {
	var req EditAppointmentRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	appointment, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	if caller.Role != model.RolePatient || appointment.PatientID != caller.ID {
		respondForbidden(c, caller, c.Request.URL.Path, "not the booking patient")
		return
	}

	if req.Date != "" {
		appointment.Date = req.Date
	}
	if req.Time != "" {
		appointment.Time = req.Time
	}
	if req.Reason != "" {
		appointment.Reason = req.Reason
	}

	if err := db.Save(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment updated", Data: appointment})
}

// DeleteAppointment godoc
// @Summary      Delete an appointment
// @Description  Remove an appointment. Allowed for admins and for the patient who booked it; doctors cannot delete.
// @Tags         Appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse "Appointment deleted"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/appointments/{id} [delete]
func DeleteAppointment(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	appointment, ok := loadAppointmentOrRespond(c, db, id)
	if !ok {
		return
	}

	if caller.Role != model.RoleAdmin && !(caller.Role == model.RolePatient && appointment.PatientID == caller.ID) {
		respondForbidden(c, caller, c.Request.URL.Path, "not admin or the booking patient")
		return
	}

	if err := db.Delete(&appointment).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment deleted"})
}

func loadAppointmentOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.Appointment, bool) {
	var appointment model.Appointment
	err := db.First(&appointment, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{
			Msg: "Appointment not found",
			Err: fmt.Errorf("appointment %d not found", id),
		})
		return model.Appointment{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointment", Err: err})
		return model.Appointment{}, false
	}
	return appointment, true
}
