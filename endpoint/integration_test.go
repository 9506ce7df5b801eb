package endpoint

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/stretchr/testify/assert"
)

// Full patient journey: register, login, book, list own appointments.
func TestIntegration_PatientBooksAppointment(t *testing.T) {
	r, db := setupEndpointTest(t)
	doctor := createTestDoctor(t, db, "doctor@example.com")

	w := doRequest(t, r, "POST", "/api/auth/register", "", registerPayload("journey@example.com", "9834729460", model.RolePatient))
	assertStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "POST", "/api/auth/login", "", map[string]string{
		"email":    "journey@example.com",
		"password": "password123",
	})
	assertStatus(t, w, http.StatusOK)
	token := responseData(t, w)["token"].(string)

	w = doRequest(t, r, "POST", "/api/appointments", token, map[string]interface{}{
		"doctor_id": doctor.ID,
		"date":      "2025-06-01",
		"time":      "09:00",
		"reason":    "checkup",
	})
	assertStatus(t, w, http.StatusCreated)

	w = doRequest(t, r, "GET", "/api/appointments/my", token, nil)
	assertStatus(t, w, http.StatusOK)
	list := responseDataList(t, w)
	assert.Len(t, list, 1)
	row := list[0].(map[string]interface{})
	assert.Equal(t, "Test Doctor", row["doctor_name"])
	assert.Equal(t, "Pending", row["status"])
}

// A doctor confirms their own appointment; another doctor is turned away.
func TestIntegration_DoctorConfirmsOwnAppointment(t *testing.T) {
	r, db := setupEndpointTest(t)
	patient := createTestPatient(t, db, "patient@example.com")
	doctor := createTestDoctor(t, db, "doctor@example.com")
	intruder := createTestDoctor(t, db, "intruder@example.com")
	appointment := createTestAppointment(t, db, patient.ID, doctor.ID, model.StatusPending)
	path := fmt.Sprintf("/api/appointments/%d", appointment.ID)

	w := doRequest(t, r, "PUT", path, tokenFor(t, intruder), map[string]string{"status": "Confirmed"})
	assertStatus(t, w, http.StatusForbidden)

	w = doRequest(t, r, "PUT", path, tokenFor(t, doctor), map[string]string{"status": "Confirmed"})
	assertStatus(t, w, http.StatusOK)

	var updated model.Appointment
	assert.NoError(t, db.First(&updated, appointment.ID).Error)
	assert.Equal(t, model.StatusConfirmed, updated.Status)
}

// Doctor approval flow: register, fail to login, get approved, login,
// appear in the public directory.
func TestIntegration_DoctorApprovalFlow(t *testing.T) {
	r, db := setupEndpointTest(t)
	admin := createTestAdmin(t, db, "admin@example.com")

	w := doRequest(t, r, "POST", "/api/auth/register", "", registerPayload("newdoc@example.com", "9834729461", model.RoleDoctor))
	assertStatus(t, w, http.StatusCreated)

	login := map[string]string{"email": "newdoc@example.com", "password": "password123"}
	w = doRequest(t, r, "POST", "/api/auth/login", "", login)
	assertStatus(t, w, http.StatusForbidden)

	var doctor model.User
	assert.NoError(t, db.Where("email = ?", "newdoc@example.com").First(&doctor).Error)
	w = doRequest(t, r, "PUT", fmt.Sprintf("/api/admin/approve-doctor/%d", doctor.ID), tokenFor(t, admin), nil)
	assertStatus(t, w, http.StatusOK)

	w = doRequest(t, r, "POST", "/api/auth/login", "", login)
	assertStatus(t, w, http.StatusOK)
	doctorToken := responseData(t, w)["token"].(string)

	w = doRequest(t, r, "GET", "/api/doctors", doctorToken, nil)
	assertStatus(t, w, http.StatusOK)
	list := responseDataList(t, w)
	assert.Len(t, list, 1)
	assert.Equal(t, "newdoc@example.com", list[0].(map[string]interface{})["email"])
}

// Ownership is enforced across patients: one patient cannot delete
// another's booking.
func TestIntegration_PatientCannotDeleteOthersAppointment(t *testing.T) {
	r, db := setupEndpointTest(t)
	owner := createTestPatient(t, db, "owner@example.com")
	intruder := createTestPatient(t, db, "intruder@example.com")
	doctor := createTestDoctor(t, db, "doctor@example.com")
	appointment := createTestAppointment(t, db, owner.ID, doctor.ID, model.StatusPending)
	path := fmt.Sprintf("/api/appointments/%d", appointment.ID)

	w := doRequest(t, r, "DELETE", path, tokenFor(t, intruder), nil)
	assertStatus(t, w, http.StatusForbidden)

	var count int64
	db.Model(&model.Appointment{}).Count(&count)
	assert.Equal(t, int64(1), count)

	w = doRequest(t, r, "DELETE", path, tokenFor(t, owner), nil)
	assertStatus(t, w, http.StatusOK)

	db.Model(&model.Appointment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
