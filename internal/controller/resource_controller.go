package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/service"
	"learnlink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResourceController struct {
	Resources  *service.ResourceService
	Engagement *service.EngagementService
}

func NewResourceController(resources *service.ResourceService, engagement *service.EngagementService) *ResourceController {
	return &ResourceController{Resources: resources, Engagement: engagement}
}

// List godoc
// @Summary List resources visible to the caller
// @Tags resources
// @Produce json
// @Param search query string false "title/description search"
// @Param subject query string false "subject filter"
// @Param gradeLevel query string false "grade level filter"
// @Param type query string false "resource type filter"
// @Param quarter query string false "quarter filter"
// @Param mine query bool false "only the caller's own uploads"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /resources [get]
func (ctl *ResourceController) List(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	var userID uint
	var role model.UserRole
	if claims != nil {
		userID = claims.UserID
		role = claims.Role
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter := service.ResourceFilter{
		Search:     c.Query("search"),
		Subject:    c.Query("subject"),
		GradeLevel: c.Query("gradeLevel"),
		Type:       c.Query("type"),
		Quarter:    c.Query("quarter"),
		Page:       page,
		PageSize:   limit,
	}
	if c.Query("mine") == "true" && userID != 0 {
		filter.UploaderID = userID
	}

	resources, total, err := ctl.Resources.List(c.Request.Context(), userID, role, filter)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, util.PageResponse{List: resources, Total: total, Page: page, Limit: limit})
}

// Pending godoc
// @Summary List the moderation queue
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /resources/pending [get]
func (ctl *ResourceController) Pending(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resources, total, err := ctl.Resources.ListPending(c.Request.Context(), claims.Role, page, limit)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, util.PageResponse{List: resources, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Get one resource
// @Tags resources
// @Produce json
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id} [get]
func (ctl *ResourceController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	var userID uint
	var role model.UserRole
	if claims != nil {
		userID = claims.UserID
		role = claims.Role
	}

	resource, err := ctl.Resources.Get(c.Request.Context(), userID, role, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, resource)
}

// Submit godoc
// @Summary Upload a new resource
// @Tags resources
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file false "resource file (optional for drafts)"
// @Param title formData string true "title"
// @Success 201 {object} util.Response
// @Router /resources [post]
func (ctl *ResourceController) Submit(c *gin.Context) {
	claims := util.GetUserFromContext(c)

	input := service.SubmitResourceInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Subject:      c.PostForm("subject"),
		GradeLevel:   c.PostForm("gradeLevel"),
		ResourceType: c.PostForm("resourceType"),
		Quarter:      c.PostForm("quarter"),
		SaveAsDraft:  c.PostForm("saveAsDraft") == "true",
	}

	// a draft may be saved without a file
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			util.LogInternalError(c, err)
			return
		}
		defer file.Close()
		input.FileName = fileHeader.Filename
		input.FileSize = fileHeader.Size
		input.File = file
	}

	resource, err := ctl.Resources.Submit(c.Request.Context(), claims.UserID, input)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Created(c, resource)
}

// Update godoc
// @Summary Edit resource metadata
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id} [put]
func (ctl *ResourceController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input service.UpdateResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	resource, err := ctl.Resources.Update(c.Request.Context(), claims.UserID, claims.Role, id, input)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, resource)
}

// SubmitForReview godoc
// @Summary Move a draft into the review queue
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id}/submit [post]
func (ctl *ResourceController) SubmitForReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	resource, err := ctl.Resources.SubmitForReview(c.Request.Context(), claims.UserID, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, resource)
}

// Approve godoc
// @Summary Approve and publish a pending resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id}/approve [post]
func (ctl *ResourceController) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	resource, err := ctl.Resources.Approve(c.Request.Context(), claims.UserID, claims.Role, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, resource)
}

// Reject godoc
// @Summary Reject a pending resource, optionally with a reason
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id}/reject [post]
func (ctl *ResourceController) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			util.BadRequest(c, err.Error())
			return
		}
	}

	claims := util.GetUserFromContext(c)
	resource, err := ctl.Resources.Reject(c.Request.Context(), claims.UserID, claims.Role, id, input.Reason)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, resource)
}

// BatchDelete godoc
// @Summary Delete resources and all their dependent records
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /resources [delete]
func (ctl *ResourceController) BatchDelete(c *gin.Context) {
	var input struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, "at least one resource id is required")
		return
	}

	claims := util.GetUserFromContext(c)
	deleted, err := ctl.Resources.BatchDelete(c.Request.Context(), claims.UserID, claims.Role, input.IDs)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{
		"deleted": deleted,
		"message": fmt.Sprintf("%d resource(s) deleted successfully.", deleted),
	})
}

// Download godoc
// @Summary Download the resource file
// @Tags resources
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "resource id"
// @Param inline query bool false "serve inline for preview instead of as an attachment"
// @Success 200 {file} binary
// @Router /resources/{id}/download [get]
func (ctl *ResourceController) Download(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	inline := c.Query("inline") == "true"

	var resource *model.Resource
	var content []byte
	var err error
	if inline {
		// previews don't count as downloads
		resource, content, err = ctl.Resources.Preview(c.Request.Context(), claims.UserID, claims.Role, id)
	} else {
		resource, content, err = ctl.Resources.Download(c.Request.Context(), claims.UserID, claims.Role, id)
	}
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("%s.%s", resource.Title, resource.FileFormat)
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	c.Data(http.StatusOK, util.ContentTypeForFormat(resource.FileFormat), content)
}

// View godoc
// @Summary Record a view of the resource
// @Tags resources
// @Produce json
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id}/view [post]
func (ctl *ResourceController) View(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	var userID uint
	if claims != nil {
		userID = claims.UserID
	}

	if err := ctl.Engagement.RecordView(c.Request.Context(), userID, id); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}

// Like godoc
// @Summary Toggle the caller's like on a resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id}/like [post]
func (ctl *ResourceController) Like(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	liked, count, err := ctl.Engagement.ToggleLike(c.Request.Context(), claims.UserID, model.TargetResource, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"liked": liked, "likeCount": count})
}

// Rate godoc
// @Summary Rate a resource 1-5
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id}/rate [post]
func (ctl *ResourceController) Rate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Rating int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, "a rating between 1 and 5 is required")
		return
	}

	claims := util.GetUserFromContext(c)
	mean, count, err := ctl.Engagement.Rate(c.Request.Context(), claims.UserID, id, input.Rating)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"rating": mean, "ratingCount": count})
}

// Bookmark godoc
// @Summary Toggle the caller's bookmark on a resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id}/bookmark [post]
func (ctl *ResourceController) Bookmark(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	saved, err := ctl.Engagement.ToggleBookmark(c.Request.Context(), claims.UserID, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"bookmarked": saved})
}

// Progress godoc
// @Summary Set the caller's reading progress on a resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "resource id"
// @Success 200 {object} util.Response
// @Router /resources/{id}/progress [put]
func (ctl *ResourceController) Progress(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Percent *int `json:"percent" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, "a progress percentage is required")
		return
	}

	claims := util.GetUserFromContext(c)
	history, err := ctl.Engagement.UpdateProgress(c.Request.Context(), claims.UserID, id, *input.Percent)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, history)
}

// History godoc
// @Summary List the caller's reading history
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param bookmarked query bool false "only bookmarked rows"
// @Success 200 {object} util.Response
// @Router /reading-history [get]
func (ctl *ResourceController) History(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	histories, err := ctl.Engagement.ListHistory(c.Request.Context(), claims.UserID, c.Query("bookmarked") == "true")
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, histories)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
