package model

import (
	"time"

	"gorm.io/gorm"
)

// MedicalRecord is a clinical note tied to a patient and the doctor who
// authored it, optionally referencing the appointment it came out of.
// @Description Medical record information
type MedicalRecord struct {
	gorm.Model
	PatientID     uint      `json:"patient_id" gorm:"column:patient_id;not null;index" example:"1"`
	DoctorID      uint      `json:"doctor_id" gorm:"column:doctor_id;not null;index" example:"2"`
	AppointmentID *uint     `json:"appointment_id,omitempty" gorm:"column:appointment_id;index" example:"3"`
	Diagnosis     string    `json:"diagnosis" gorm:"column:diagnosis;type:text;not null" example:"Hypertension"`
	Prescription  string    `json:"prescription" gorm:"column:prescription;type:text;not null" example:"Amlodipine 5mg"`
	Notes         string    `json:"notes" gorm:"column:notes;type:text" example:"Review in two weeks"`
	Date          time.Time `json:"date" gorm:"column:date"`
}

// BeforeCreate defaults the record date to now when not supplied.
func (m *MedicalRecord) BeforeCreate(tx *gorm.DB) error {
	if m.Date.IsZero() {
		m.Date = time.Now()
	}
	return nil
}

// MedicalRecordWithDoctor is a record joined with its authoring doctor,
// used by the patient-facing listing.
type MedicalRecordWithDoctor struct {
	MedicalRecord
	DoctorName  string `json:"doctor_name" gorm:"column:doctor_name"`
	DoctorEmail string `json:"doctor_email" gorm:"column:doctor_email"`
}

// MedicalRecordWithPatient is a record joined with its patient, used by the
// doctor-facing listing.
type MedicalRecordWithPatient struct {
	MedicalRecord
	PatientName  string `json:"patient_name" gorm:"column:patient_name"`
	PatientEmail string `json:"patient_email" gorm:"column:patient_email"`
}
