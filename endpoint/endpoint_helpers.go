package endpoint

import (
	"fmt"
	"strconv"

	"github.com/clinicbook/clinicbook-api/middleware"
	"github.com/clinicbook/clinicbook-api/model"
	"github.com/clinicbook/clinicbook-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// clientInfo groups the request origin fields used for security logging.
type clientInfo struct {
	IP    string
	Agent string
}

func clientInfoFromContext(c *gin.Context) clientInfo {
	return clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
}

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func currentUserOrRespond(c *gin.Context) (model.User, bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{
			Msg: "User not authenticated",
			Err: fmt.Errorf("user not found in context"),
		})
		return model.User{}, false
	}
	return user, true
}

// parseIDParamOrRespond parses the named path parameter as a positive integer id.
func parseIDParamOrRespond(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid id parameter",
			Err: fmt.Errorf("invalid id %q", raw),
		})
		return 0, false
	}
	return uint(id), true
}

func respondForbidden(c *gin.Context, caller model.User, resource, reason string) {
	util.LogUnauthorizedAccess(fmt.Sprintf("%d", caller.ID), caller.Email, c.ClientIP(), resource, reason)
	util.CallUserForbidden(c, util.APIErrorParams{
		Msg: "Access denied",
		Err: fmt.Errorf("access denied"),
	})
}

// toUserInfo projects a user row into its password-free listing shape.
func toUserInfo(u model.User) model.UserInfo {
	return model.UserInfo{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Age:            u.Age,
		Gender:         u.Gender,
		Role:           u.Role,
		Specialization: u.Specialization,
		IsApproved:     u.IsApproved,
		IsRejected:     u.IsRejected,
	}
}

func toUserInfoList(users []model.User) []model.UserInfo {
	infos := make([]model.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, toUserInfo(u))
	}
	return infos
}
