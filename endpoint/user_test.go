package endpoint

import (
	"net/http"
	"testing"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/stretchr/testify/assert"
)

func TestGetProfile_RoleShapes(t *testing.T) {
	r, db := setupEndpointTest(t)
	patient := createTestPatient(t, db, "patient@example.com")
	doctor := createTestDoctor(t, db, "doctor@example.com")
	admin := createTestAdmin(t, db, "admin@example.com")

	w := doRequest(t, r, "GET", "/api/user/profile", tokenFor(t, patient), nil)
	assertStatus(t, w, http.StatusOK)
	data := responseData(t, w)
	assert.Equal(t, "patient@example.com", data["email"])
	assert.Contains(t, data, "age")
	assert.NotContains(t, data, "specialization")

	w = doRequest(t, r, "GET", "/api/user/profile", tokenFor(t, doctor), nil)
	assertStatus(t, w, http.StatusOK)
	data = responseData(t, w)
	assert.Equal(t, "Cardiology", data["specialization"])
	assert.Equal(t, true, data["is_approved"])

	// Admin profile carries only the identity fields.
	w = doRequest(t, r, "GET", "/api/user/profile", tokenFor(t, admin), nil)
	assertStatus(t, w, http.StatusOK)
	data = responseData(t, w)
	assert.Equal(t, model.RoleAdmin, data["role"])
	assert.NotContains(t, data, "age")
	assert.NotContains(t, data, "specialization")
}

func TestGetProfile_RequiresToken(t *testing.T) {
	r, _ := setupEndpointTest(t)

	w := doRequest(t, r, "GET", "/api/user/profile", "", nil)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	r, db := setupEndpointTest(t)
	patient := createTestPatient(t, db, "patient@example.com")

	w := doRequest(t, r, "PUT", "/api/user/profile", tokenFor(t, patient), map[string]interface{}{
		"name":   "  Updated   Name ",
		"phone":  "9111111111",
		"age":    41,
		"gender": "Other",
	})
	assertStatus(t, w, http.StatusOK)

	var updated model.User
	assert.NoError(t, db.First(&updated, patient.ID).Error)
	assert.Equal(t, "Updated Name", updated.Name)
	assert.Equal(t, "9111111111", updated.Phone)
	assert.Equal(t, 41, updated.Age)
	assert.Equal(t, "Other", updated.Gender)
}

func TestUpdateProfile_Validation(t *testing.T) {
	r, db := setupEndpointTest(t)
	patient := createTestPatient(t, db, "patient@example.com")
	other := createTestPatient(t, db, "other@example.com")

	w := doRequest(t, r, "PUT", "/api/user/profile", tokenFor(t, patient), map[string]string{"phone": "123"})
	assertStatus(t, w, http.StatusBadRequest)

	w = doRequest(t, r, "PUT", "/api/user/profile", tokenFor(t, patient), map[string]string{"gender": "Robot"})
	assertStatus(t, w, http.StatusBadRequest)

	// Taking another user's phone number is refused.
	w = doRequest(t, r, "PUT", "/api/user/profile", tokenFor(t, patient), map[string]string{"phone": other.Phone})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestUpdateProfile_SpecializationOnlyForDoctors(t *testing.T) {
	r, db := setupEndpointTest(t)
	patient := createTestPatient(t, db, "patient@example.com")
	doctor := createTestDoctor(t, db, "doctor@example.com")

	w := doRequest(t, r, "PUT", "/api/user/profile", tokenFor(t, doctor), map[string]string{
		"specialization": "Dermatology",
	})
	assertStatus(t, w, http.StatusOK)

	var updatedDoctor model.User
	assert.NoError(t, db.First(&updatedDoctor, doctor.ID).Error)
	assert.Equal(t, "Dermatology", updatedDoctor.Specialization)

	w = doRequest(t, r, "PUT", "/api/user/profile", tokenFor(t, patient), map[string]string{
		"specialization": "Dermatology",
	})
	assertStatus(t, w, http.StatusOK)

	var updatedPatient model.User
	assert.NoError(t, db.First(&updatedPatient, patient.ID).Error)
	assert.Empty(t, updatedPatient.Specialization)
}
