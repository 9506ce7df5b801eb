package endpoint

import (
	"fmt"
	"strings"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateMedicalRecordRequest struct {
	PatientID     uint   `json:"patient_id" binding:"required" example:"1"`
	AppointmentID *uint  `json:"appointment_id,omitempty" example:"3"`
	Diagnosis     string `json:"diagnosis" binding:"required" example:"Hypertension"`
	Prescription  string `json:"prescription" binding:"required" example:"Amlodipine 5mg"`
	Notes         string `json:"notes" example:"Review in two weeks"`
}

// CreateMedicalRecord godoc
// @Summary      Create a medical record
// @Description  Record a diagnosis for a patient. The authoring doctor is always the caller.
// @Tags         MedicalRecords
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateMedicalRecordRequest true "Record details"
// @Success      201 {object} util.APIResponse{data=model.MedicalRecord} "Record created"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      403 {object} util.APIResponse "Doctor access only"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/records [post]
func CreateMedicalRecord(c *gin.Context) {
	var req CreateMedicalRecordRequest
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

	if strings.TrimSpace(req.Diagnosis) == "" || strings.TrimSpace(req.Prescription) == "" {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request payload",
			Err: fmt.Errorf("diagnosis and prescription are required"),
		})
		return
	}

	var patient model.User
	err := db.Where("id = ? AND role = ?", req.PatientID, model.RolePatient).First(&patient).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Patient not found", Err: fmt.Errorf("patient %d not found", req.PatientID)})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch patient", Err: err})
		return
	}

	if req.AppointmentID != nil {
		var appointment model.Appointment
		if err := db.First(&appointment, *req.AppointmentID).Error; err != nil {
			util.CallErrorNotFound(c, util.APIErrorParams{
				Msg: "Appointment not found",
				Err: fmt.Errorf("appointment %d not found", *req.AppointmentID),
			})
			return
		}
	}

	record := model.MedicalRecord{
		PatientID:     patient.ID,
		DoctorID:      caller.ID,
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
	}
	if err := db.Create(&record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create medical record", Err: err})
		return
	}

	util.CallSuccessCreated(c, util.APISuccessParams{Msg: "Medical record created", Data: record})
}

// recordSearchFilter applies the free-text search over the clinical fields.
func recordSearchFilter(query *gorm.DB, search string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" {
		return query
	}
	like := "%" + search + "%"
	return query.Where(
		"medical_records.diagnosis LIKE ? OR medical_records.prescription LIKE ? OR medical_records.notes LIKE ?",
		like, like, like,
	)
}

// ListRecordsByPatient godoc
// @Summary      List a patient's medical records
// @Description  Records for the given patient, newest first. Patients may only read their own; doctors and admins may read any patient's history.
// @Tags         MedicalRecords
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Patient ID"
// @Param        search query string false "Match against diagnosis, prescription or notes"
// @Success      200 {object} util.APIResponse{data=[]model.MedicalRecordWithDoctor} "Records"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/records/patient/{id} [get]
func ListRecordsByPatient(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	patientID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	// Any doctor may read any patient's history; patients only their own.
	if caller.Role == model.RolePatient && caller.ID != patientID {
		respondForbidden(c, caller, c.Request.URL.Path, "patients may only read their own records")
		return
	}

	query := db.Table("medical_records").
		Select("medical_records.*, doctors.name AS doctor_name, doctors.email AS doctor_email").
		Joins("JOIN users AS doctors ON doctors.id = medical_records.doctor_id").
		Where("medical_records.deleted_at IS NULL").
		Where("medical_records.patient_id = ?", patientID)
	query = recordSearchFilter(query, c.Query("search"))

	var records []model.MedicalRecordWithDoctor
	if err := query.Order("medical_records.date desc").Find(&records).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch medical records", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Medical records fetched", Data: records})
}

// ListRecordsByDoctor godoc
// @Summary      List records authored by a doctor
// @Description  Records authored by the given doctor. Only the doctor themselves may list them.
// @Tags         MedicalRecords
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Doctor ID"
// @Param        search query string false "Match against diagnosis, prescription or notes"
// @Success      200 {object} util.APIResponse{data=[]model.MedicalRecordWithPatient} "Records"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/records/doctor/{id} [get]
func ListRecordsByDoctor(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	doctorID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	if caller.Role != model.RoleDoctor || caller.ID != doctorID {
		respondForbidden(c, caller, c.Request.URL.Path, "doctors may only list their own records")
		return
	}

	query := db.Table("medical_records").
		Select("medical_records.*, patients.name AS patient_name, patients.email AS patient_email").
		Joins("JOIN users AS patients ON patients.id = medical_records.patient_id").
		Where("medical_records.deleted_at IS NULL").
		Where("medical_records.doctor_id = ?", doctorID)
	query = recordSearchFilter(query, c.Query("search"))

	var records []model.MedicalRecordWithPatient
	if err := query.Order("medical_records.date desc").Find(&records).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch medical records", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Medical records fetched", Data: records})
}

// ListRecordsByAppointment godoc
// @Summary      List records for an appointment
// @Description  Records tied to the given appointment, visible to its doctor, its patient and admins.
// @Tags         MedicalRecords
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=[]model.MedicalRecord} "Records"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/records/appointment/{id} [get]
func ListRecordsByAppointment(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}
	appointmentID, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	appointment, ok := loadAppointmentOrRespond(c, db, appointmentID)
	if !ok {
		return
	}

	if caller.Role != model.RoleAdmin && caller.ID != appointment.PatientID && caller.ID != appointment.DoctorID {
		respondForbidden(c, caller, c.Request.URL.Path, "not a participant of the appointment")
		return
	}

	var records []model.MedicalRecord
	if err := db.Where("appointment_id = ?", appointmentID).Order("date desc").Find(&records).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch medical records", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Medical records fetched", Data: records})
}

type UpdateMedicalRecordRequest struct {
	Diagnosis    string `json:"diagnosis" example:"Hypertension stage 2"`
	Prescription string `json:"prescription" example:"Amlodipine 10mg"`
	Notes        string `json:"notes" example:"Blood pressure still elevated"`
}

// UpdateMedicalRecord godoc
// @Summary      Update a medical record
// @Description  Partially update a record. Only the authoring doctor may edit it.
// @Tags         MedicalRecords
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Record ID"
// @Param        request body UpdateMedicalRecordRequest true "Fields to change"
// @Success      200 {object} util.APIResponse{data=model.MedicalRecord} "Record updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Record not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/records/{id} [put]
func UpdateMedicalRecord(c *gin.Context) {
	var req UpdateMedicalRecordRequest
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

	record, ok := loadMedicalRecordOrRespond(c, db, id)
	if !ok {
		return
	}

	if caller.Role != model.RoleDoctor || record.DoctorID != caller.ID {
		respondForbidden(c, caller, c.Request.URL.Path, "not the authoring doctor")
		return
	}

	if strings.TrimSpace(req.Diagnosis) != "" {
		record.Diagnosis = req.Diagnosis
	}
	if strings.TrimSpace(req.Prescription) != "" {
		record.Prescription = req.Prescription
	}
	if req.Notes != "" {
		record.Notes = req.Notes
	}

	if err := db.Save(&record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update medical record", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Medical record updated", Data: record})
}

// DeleteMedicalRecord godoc
// @Summary      Delete a medical record
// @Description  Remove a record. Allowed for admins and for the authoring doctor.
// @Tags         MedicalRecords
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Record ID"
// @Success      200 {object} util.APIResponse "Record deleted"
// @Failure      403 {object} util.APIResponse "Access denied"
// @Failure      404 {object} util.APIResponse "Record not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/records/{id} [delete]
func DeleteMedicalRecord(c *gin.Context) {
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

	record, ok := loadMedicalRecordOrRespond(c, db, id)
	if !ok {
		return
	}

	if caller.Role != model.RoleAdmin && !(caller.Role == model.RoleDoctor && record.DoctorID == caller.ID) {
		respondForbidden(c, caller, c.Request.URL.Path, "not admin or the authoring doctor")
		return
	}

	if err := db.Delete(&record).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete medical record", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Medical record deleted"})
}

func loadMedicalRecordOrRespond(c *gin.Context, db *gorm.DB, id uint) (model.MedicalRecord, bool) {
	var record model.MedicalRecord
	err := db.First(&record, id).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{
			Msg: "Medical record not found",
			Err: fmt.Errorf("medical record %d not found", id),
		})
		return model.MedicalRecord{}, false
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch medical record", Err: err})
		return model.MedicalRecord{}, false
	}
	return record, true
}
