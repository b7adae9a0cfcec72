package controller

import (
	"learnlink_backend/internal/service"
	"learnlink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Service *service.DashboardService
}

func NewDashboardController(dashboard *service.DashboardService) *DashboardController {
	return &DashboardController{Service: dashboard}
}

// Dashboard godoc
// @Summary Get the caller's dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /dashboard [get]
func (ctl *DashboardController) Dashboard(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	stats, err := ctl.Service.Dashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, stats)
}

// Profile godoc
// @Summary Get the caller's profile with their contributions
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /profile [get]
func (ctl *DashboardController) Profile(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	profile, err := ctl.Service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, profile)
}

// Report godoc
// @Summary Get the moderation and usage report
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /admin/reports [get]
func (ctl *DashboardController) Report(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	report, err := ctl.Service.Report(c.Request.Context(), claims.Role)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, report)
}

// RefreshRecommendations godoc
// @Summary Rebuild the caller's recommendations
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /recommendations/refresh [post]
func (ctl *DashboardController) RefreshRecommendations(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	recs, err := ctl.Service.RefreshRecommendations(c.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, recs)
}
