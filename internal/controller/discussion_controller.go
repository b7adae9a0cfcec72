package controller

import (
	"strconv"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/service"
	"learnlink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DiscussionController struct {
	Discussions *service.DiscussionService
	Engagement  *service.EngagementService
}

func NewDiscussionController(discussions *service.DiscussionService, engagement *service.EngagementService) *DiscussionController {
	return &DiscussionController{Discussions: discussions, Engagement: engagement}
}

// List godoc
// @Summary List discussions
// @Tags discussions
// @Produce json
// @Param category query string false "category filter"
// @Param search query string false "title/content search"
// @Success 200 {object} util.Response
// @Router /discussions [get]
func (ctl *DiscussionController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	claims := util.GetUserFromContext(c)
	var userID uint
	if claims != nil {
		userID = claims.UserID
	}

	discussions, total, err := ctl.Discussions.List(c.Request.Context(), userID, c.Query("category"), c.Query("search"), page, limit)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, util.PageResponse{List: discussions, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Get one discussion with its replies
// @Tags discussions
// @Produce json
// @Param id path int true "discussion id"
// @Success 200 {object} util.Response
// @Router /discussions/{id} [get]
func (ctl *DiscussionController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	var userID uint
	if claims != nil {
		userID = claims.UserID
	}

	discussion, err := ctl.Discussions.Get(c.Request.Context(), userID, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, discussion)
}

// Update godoc
// @Summary Edit a discussion thread
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "discussion id"
// @Success 200 {object} util.Response
// @Router /discussions/{id} [put]
func (ctl *DiscussionController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Type    *string `json:"type"`
		Tags    *string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	discussion, err := ctl.Discussions.Update(c.Request.Context(), claims.UserID, claims.Role, id,
		input.Title, input.Content, input.Type, input.Tags)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, discussion)
}

// PopularTags godoc
// @Summary Most used tags across all discussions
// @Tags discussions
// @Produce json
// @Success 200 {object} util.Response
// @Router /discussions/popular-tags [get]
func (ctl *DiscussionController) PopularTags(c *gin.Context) {
	tags, err := ctl.Discussions.PopularTags(c.Request.Context())
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"tags": tags})
}

// Create godoc
// @Summary Open a discussion thread
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.DiscussionInput true "discussion"
// @Success 201 {object} util.Response
// @Router /discussions [post]
func (ctl *DiscussionController) Create(c *gin.Context) {
	var input service.DiscussionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	discussion, err := ctl.Discussions.Create(c.Request.Context(), claims.UserID, input)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Created(c, discussion)
}

// Delete godoc
// @Summary Delete a discussion and its replies
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "discussion id"
// @Success 200 {object} util.Response
// @Router /discussions/{id} [delete]
func (ctl *DiscussionController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	if err := ctl.Discussions.Delete(c.Request.Context(), claims.UserID, claims.Role, id); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}

// Reply godoc
// @Summary Reply to a discussion
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "discussion id"
// @Success 201 {object} util.Response
// @Router /discussions/{id}/replies [post]
func (ctl *DiscussionController) Reply(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Content string `json:"content" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, "reply content is required")
		return
	}

	claims := util.GetUserFromContext(c)
	post, err := ctl.Discussions.Reply(c.Request.Context(), claims.UserID, id, input.Content)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Created(c, post)
}

// DeleteReply godoc
// @Summary Delete one reply
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "reply id"
// @Success 200 {object} util.Response
// @Router /discussions/replies/{id} [delete]
func (ctl *DiscussionController) DeleteReply(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	if err := ctl.Discussions.DeleteReply(c.Request.Context(), claims.UserID, claims.Role, id); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}

// MarkBestAnswer godoc
// @Summary Mark a reply as the thread's best answer
// @Tags discussions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "discussion id"
// @Success 200 {object} util.Response
// @Router /discussions/{id}/best-answer [post]
func (ctl *DiscussionController) MarkBestAnswer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		PostID uint `json:"postId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, "a reply id is required")
		return
	}

	claims := util.GetUserFromContext(c)
	discussion, err := ctl.Discussions.MarkBestAnswer(c.Request.Context(), claims.UserID, claims.Role, id, input.PostID)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, discussion)
}

// Like godoc
// @Summary Toggle the caller's like on a discussion or reply
// @Tags discussions
// @Produce json
// @Security BearerAuth
// @Param id path int true "target id"
// @Param target query string false "discussion (default) or reply"
// @Success 200 {object} util.Response
// @Router /discussions/{id}/like [post]
func (ctl *DiscussionController) Like(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	target := model.TargetDiscussion
	if c.Query("target") == "reply" {
		target = model.TargetReply
	}

	claims := util.GetUserFromContext(c)
	liked, count, err := ctl.Engagement.ToggleLike(c.Request.Context(), claims.UserID, target, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"liked": liked, "likeCount": count})
}
