package controller

import (
	"strconv"

	"learnlink_backend/internal/model"
	"learnlink_backend/internal/service"
	"learnlink_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	Lessons    *service.LessonService
	Engagement *service.EngagementService
}

func NewLessonController(lessons *service.LessonService, engagement *service.EngagementService) *LessonController {
	return &LessonController{Lessons: lessons, Engagement: engagement}
}

// List godoc
// @Summary List lessons learned
// @Tags lessons
// @Produce json
// @Param category query string false "category filter"
// @Param search query string false "title/content search"
// @Success 200 {object} util.Response
// @Router /lessons [get]
func (ctl *LessonController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	claims := util.GetUserFromContext(c)
	var userID uint
	if claims != nil {
		userID = claims.UserID
	}

	lessons, total, err := ctl.Lessons.List(c.Request.Context(), userID, c.Query("category"), c.Query("search"), page, limit)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	stats, err := ctl.Lessons.Stats(c.Request.Context())
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"list": lessons, "total": total, "page": page, "limit": limit, "stats": stats})
}

// Get godoc
// @Summary Get one lesson
// @Tags lessons
// @Produce json
// @Param id path int true "lesson id"
// @Success 200 {object} util.Response
// @Router /lessons/{id} [get]
func (ctl *LessonController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	var userID uint
	if claims != nil {
		userID = claims.UserID
	}

	lesson, err := ctl.Lessons.Get(c.Request.Context(), userID, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, lesson)
}

// Create godoc
// @Summary Share a lesson learned on a published resource
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.LessonInput true "lesson"
// @Success 201 {object} util.Response
// @Router /lessons [post]
func (ctl *LessonController) Create(c *gin.Context) {
	var input service.LessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	lesson, err := ctl.Lessons.Create(c.Request.Context(), claims.UserID, input)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Created(c, lesson)
}

// Update godoc
// @Summary Edit a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "lesson id"
// @Success 200 {object} util.Response
// @Router /lessons/{id} [put]
func (ctl *LessonController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var input struct {
		Title    *string `json:"title"`
		Content  *string `json:"content"`
		Category *string `json:"category"`
		Tags     *string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	lesson, err := ctl.Lessons.Update(c.Request.Context(), claims.UserID, claims.Role, id,
		input.Title, input.Content, input.Category, input.Tags)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, lesson)
}

// Delete godoc
// @Summary Delete a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "lesson id"
// @Success 200 {object} util.Response
// @Router /lessons/{id} [delete]
func (ctl *LessonController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	if err := ctl.Lessons.Delete(c.Request.Context(), claims.UserID, claims.Role, id); err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, nil)
}

// Like godoc
// @Summary Toggle the caller's like on a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path int true "lesson id"
// @Success 200 {object} util.Response
// @Router /lessons/{id}/like [post]
func (ctl *LessonController) Like(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(c)
	liked, count, err := ctl.Engagement.ToggleLike(c.Request.Context(), claims.UserID, model.TargetLesson, id)
	if err != nil {
		util.HandleServiceError(c, err)
		return
	}
	util.Success(c, gin.H{"liked": liked, "likeCount": count})
}
