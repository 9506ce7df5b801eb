package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, AppointmentStatus("Completed").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestAppointmentModel_CreateDefaultsToPending(t *testing.T) {
	db := setupTestDB(t, "appointment", &Appointment{}, &User{})

	patient := mustCreateUser(t, db, UserSpec{Name: "P", Email: "p@test.com", Phone: "1111111111", Role: RolePatient})
	doctor := mustCreateUser(t, db, UserSpec{Name: "D", Email: "d@test.com", Phone: "2222222222", Role: RoleDoctor, IsApproved: true})

	appt := Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      "2025-01-10",
		Time:      "09:00",
		Reason:    "checkup",
	}
	assert.NoError(t, db.Create(&appt).Error)

	var found Appointment
	assert.NoError(t, db.First(&found, appt.ID).Error)
	assert.Equal(t, StatusPending, found.Status)
	assert.Equal(t, patient.ID, found.PatientID)
}

func TestAppointmentModel_StatusFreeForm(t *testing.T) {
	db := setupTestDB(t, "appointment", &Appointment{})

	appt := Appointment{PatientID: 1, DoctorID: 2, Date: "2025-01-10", Time: "09:00", Status: StatusConfirmed}
	assert.NoError(t, db.Create(&appt).Error)

	// Confirmed back to Pending is legal, there is no transition table
	assert.NoError(t, db.Model(&appt).Update("status", StatusPending).Error)

	var found Appointment
	assert.NoError(t, db.First(&found, appt.ID).Error)
	assert.Equal(t, StatusPending, found.Status)
}

func TestAppointmentModel_DoubleBookingAllowed(t *testing.T) {
	db := setupTestDB(t, "appointment", &Appointment{})

	first := Appointment{PatientID: 1, DoctorID: 2, Date: "2025-01-10", Time: "09:00"}
	second := Appointment{PatientID: 3, DoctorID: 2, Date: "2025-01-10", Time: "09:00"}

	assert.NoError(t, db.Create(&first).Error)
	// Same doctor, same slot: no constraint stops this
	assert.NoError(t, db.Create(&second).Error)
}
