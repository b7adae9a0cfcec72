package controller

import (
	"fmt"
	"strconv"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/service"
	"learnlink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController exposes the administrator's account management endpoints.
type UserController struct {
	Users *service.UserService
}

func NewUserController(users *service.UserService) *UserController {
	return &UserController{Users: users}
}

// List godoc
// @Summary List accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "role filter"
// @Param search query string false "name/email search"
// @Success 200 {object} util.Response
// @Router /admin/users [get]
func (ctl *UserController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := ctl.Users.List(c.Request.Context(), claims.Role,
		model.UserRole(c.Query("role")), c.Query("search"), page, limit)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Get one account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /admin/users/{id} [get]
func (ctl *UserController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	user, err := ctl.Users.Get(c.Request.Context(), claims.Role, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, user)
}

// Add godoc
// @Summary Create an account with a temporary password
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.AddUserInput true "account form"
// @Success 201 {object} util.Response
// @Router /admin/users [post]
func (ctl *UserController) Add(c *gin.Context) {
	var input service.AddUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	user, password, err := ctl.Users.Add(c.Request.Context(), claims.Role, input)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Created(c, gin.H{"user": user, "temporaryPassword": password})
}

// Edit godoc
// @Summary Edit an account's display fields
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /admin/users/{id} [put]
func (ctl *UserController) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Name            *string `json:"name"`
		GradeOrPosition *string `json:"gradeOrPosition"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	user, err := ctl.Users.Edit(c.Request.Context(), claims.Role, id, input.Name, input.GradeOrPosition)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, user)
}

// Delete godoc
// @Summary Delete one account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /admin/users/{id} [delete]
func (ctl *UserController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	deleted, err := ctl.Users.Delete(c.Request.Context(), claims.UserID, claims.Role, []uint{id})
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{
		"deleted": deleted,
		"message": fmt.Sprintf("%d user(s) deleted successfully.", deleted),
	})
}

// BatchDelete godoc
// @Summary Delete several accounts
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /admin/users [delete]
func (ctl *UserController) BatchDelete(c *gin.Context) {
	var input struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, "at least one user id is required")
		return
	}

	claims := util.GetUserFromContext(c)
	deleted, err := ctl.Users.Delete(c.Request.Context(), claims.UserID, claims.Role, input.IDs)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{
		"deleted": deleted,
		"message": fmt.Sprintf("%d user(s) deleted successfully.", deleted),
	})
}

// ChangeRole godoc
// @Summary Change an account's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /admin/users/{id}/role [put]
func (ctl *UserController) ChangeRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Role model.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, "a role is required")
		return
	}

	claims := util.GetUserFromContext(c)
	user, err := ctl.Users.ChangeRole(c.Request.Context(), claims.UserID, claims.Role, id, input.Role)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, user)
}

// Suspend godoc
// @Summary Suspend an account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /admin/users/{id}/suspend [post]
func (ctl *UserController) Suspend(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, "a suspension reason is required")
		return
	}

	claims := util.GetUserFromContext(c)
	user, err := ctl.Users.Suspend(c.Request.Context(), claims.UserID, claims.Role, id, input.Reason)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, user)
}

// Reactivate godoc
// @Summary Reactivate a suspended account
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "user id"
// @Success 200 {object} util.Response
// @Router /admin/users/{id}/reactivate [post]
func (ctl *UserController) Reactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	user, err := ctl.Users.Reactivate(c.Request.Context(), claims.UserID, claims.Role, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, user)
}
