package controller

import (
	"learnlink_backend/internal/service"
	"learnlink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth *service.AuthService
}

func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "registration form"
// @Success 201 {object} util.Response
// @Router /auth/register [post]
func (ctl *AuthController) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	user, err := ctl.Auth.Register(c.Request.Context(), input)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Created(c, user)
}

// Login godoc
// @Summary Log in and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "credentials"
// @Success 200 {object} util.Response
// @Router /auth/login [post]
func (ctl *AuthController) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	token, user, err := ctl.Auth.Login(c.Request.Context(), input)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"token": token, "user": user})
}

// Logout godoc
// @Summary Log out and mark the account inactive
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /auth/logout [post]
func (ctl *AuthController) Logout(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if err := ctl.Auth.Logout(c.Request.Context(), claims.UserID); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}

// Profile godoc
// @Summary Get the current user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /auth/profile [get]
func (ctl *AuthController) Profile(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	user, err := ctl.Auth.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /auth/profile [put]
func (ctl *AuthController) UpdateProfile(c *gin.Context) {
	var input service.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	user, err := ctl.Auth.UpdateProfile(c.Request.Context(), claims.UserID, input)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, user)
}

// ChangePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /auth/password [put]
func (ctl *AuthController) ChangePassword(c *gin.Context) {
	var input struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	if err := ctl.Auth.ChangePassword(c.Request.Context(), claims.UserID, input.CurrentPassword, input.NewPassword); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}
