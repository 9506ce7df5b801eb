package endpoint

import (
	"fmt"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListDoctors godoc
// @Summary      List approved doctors
// @Description  Directory of doctors available for booking
// @Tags         Doctors
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse{data=[]model.UserInfo} "Doctors"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/doctors [get]
func ListDoctors(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var doctors []model.User
	err := db.Where("role = ? AND is_approved = ? AND is_rejected = ?", model.RoleDoctor, true, false).
		Order("name asc").
		Find(&doctors).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch doctors", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctors fetched", Data: toUserInfoList(doctors)})
}

// GetDoctorByID godoc
// @Summary      Get a doctor by id
// @Tags         Doctors
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Doctor ID"
// @Success      200 {object} util.APIResponse{data=model.UserInfo} "Doctor"
// @Failure      400 {object} util.APIResponse "Invalid id parameter"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/doctors/{id} [get]
func GetDoctorByID(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	id, ok := parseIDParamOrRespond(c, "id")
	if !ok {
		return
	}

	var doctor model.User
	err := db.Where("id = ? AND role = ?", id, model.RoleDoctor).First(&doctor).Error
	if err == gorm.ErrRecordNotFound {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Doctor not found", Err: fmt.Errorf("doctor %d not found", id)})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch doctor", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Doctor fetched", Data: toUserInfo(doctor)})
}
