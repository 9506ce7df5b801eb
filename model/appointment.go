package model

import "gorm.io/gorm"

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// Valid reports whether s is one of the known appointment statuses.
// Transitions between valid statuses are deliberately unrestricted.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Appointment represents a booking between one patient and one doctor
// @Description Appointment information
type Appointment struct {
	gorm.Model
	PatientID uint              `json:"patient_id" gorm:"column:patient_id;not null;index" example:"1"`
	DoctorID  uint              `json:"doctor_id" gorm:"column:doctor_id;not null;index" example:"2"`
	Date      string            `json:"date" gorm:"column:date;not null" example:"2025-01-10"`
	Time      string            `json:"time" gorm:"column:time;not null" example:"09:00"`
	Reason    string            `json:"reason" gorm:"column:reason;type:text" example:"checkup"`
	Status    AppointmentStatus `json:"status" gorm:"column:status;size:10;default:'Pending'" example:"Pending"`
}

// AppointmentDetail is an appointment row joined with the referenced
// patient and doctor names for listing responses.
// @Description Appointment with resolved patient and doctor names
type AppointmentDetail struct {
	Appointment
	PatientName          string `json:"patient_name" gorm:"column:patient_name"`
	PatientEmail         string `json:"patient_email" gorm:"column:patient_email"`
	DoctorName           string `json:"doctor_name" gorm:"column:doctor_name"`
	DoctorEmail          string `json:"doctor_email" gorm:"column:doctor_email"`
	DoctorSpecialization string `json:"doctor_specialization" gorm:"column:doctor_specialization"`
}
