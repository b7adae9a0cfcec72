package controller

import (
	"strconv"

	"learnlink_backend/internal/service"
	"learnlink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Notifications *service.NotificationService
}

func NewNotificationController(notifications *service.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

// List godoc
// @Summary List the caller's recent notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "max rows (default 20)"
// @Success 200 {object} util.Response
// @Router /notifications [get]
func (ctl *NotificationController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notifs, err := ctl.Notifications.ListRecent(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, notifs)
}

// UnreadCount godoc
// @Summary Count the caller's unread notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /notifications/unread-count [get]
func (ctl *NotificationController) UnreadCount(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	count, err := ctl.Notifications.CountUnread(c.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"unread": count})
}

// MarkRead godoc
// @Summary Mark one notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "notification id"
// @Success 200 {object} util.Response
// @Router /notifications/{id}/read [post]
func (ctl *NotificationController) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	if err := ctl.Notifications.MarkRead(c.Request.Context(), claims.UserID, id); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}

// MarkAllRead godoc
// @Summary Mark all of the caller's notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /notifications/read-all [post]
func (ctl *NotificationController) MarkAllRead(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	if err := ctl.Notifications.MarkAllRead(c.Request.Context(), claims.UserID); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}
