package endpoint

import (
	"fmt"
	"strings"

	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
)

// GetProfile godoc
// @Summary      Get own profile
// @Description  Return the authenticated user's profile, shaped per role
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} util.APIResponse "Profile"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Router       /api/user/profile [get]
func GetProfile(c *gin.Context) {
	caller, ok := currentUserOrRespond(c)
	if !ok {
		return
	}

	profile := gin.H{
		"id":    caller.ID,
		"name":  caller.Name,
		"email": caller.Email,
		"phone": caller.Phone,
		"role":  caller.Role,
	}
	switch caller.Role {
	case model.RoleDoctor:
		profile["age"] = caller.Age
		profile["gender"] = caller.Gender
		profile["specialization"] = caller.Specialization
		profile["is_approved"] = caller.IsApproved
		profile["is_rejected"] = caller.IsRejected
	case model.RolePatient:
		profile["age"] = caller.Age
		profile["gender"] = caller.Gender
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile fetched", Data: profile})
}

type UpdateProfileRequest struct {
	Name           string `json:"name" example:"John Doe"`
	Phone          string `json:"phone" example:"9834729450"`
	Age            int    `json:"age" example:"35"`
	Gender         string `json:"gender" example:"Male"`
	Specialization string `json:"specialization" example:"Dermatology"`
}

// UpdateProfile godoc
// @Summary      Update own profile
// @Description  Update name, phone, age and gender. Specialization is only applied for doctors.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Profile fields"
// @Success      200 {object} util.APIResponse "Profile updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /api/user/profile [put]
func UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
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

	var user model.User
	if err := db.First(&user, caller.ID).Error; err != nil {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User not found", Err: err})
		return
	}

	if name := util.NormalizeName(req.Name); name != "" {
		user.Name = name
	}
	if req.Phone != "" {
		if !phonePattern.MatchString(req.Phone) {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Invalid request payload",
				Err: fmt.Errorf("phone must be exactly 10 digits"),
			})
			return
		}
		if req.Phone != user.Phone && !ensurePhoneAvailable(c, db, req.Phone) {
			return
		}
		user.Phone = req.Phone
	}
	if req.Age > 0 {
		user.Age = req.Age
	}
	if req.Gender != "" {
		if !util.Contains(req.Gender, model.Genders) {
			util.CallUserError(c, util.APIErrorParams{
				Msg: "Invalid request payload",
				Err: fmt.Errorf("gender must be one of Male, Female or Other"),
			})
			return
		}
		user.Gender = req.Gender
	}
	if user.Role == model.RoleDoctor && strings.TrimSpace(req.Specialization) != "" {
		user.Specialization = strings.TrimSpace(req.Specialization)
	}

	if err := db.Save(&user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update profile", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Profile updated", Data: toUserInfo(user)})
}
