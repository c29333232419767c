package handlers

import (
	"net/http"

	"course-management-backend/dto"
	"course-management-backend/response"
	"course-management-backend/services"

	"github.com/gin-gonic/gin"
)

type LessonHandler struct {
	lessons services.LessonService
}

func NewLessonHandler(lessons services.LessonService) *LessonHandler {
	return &LessonHandler{lessons: lessons}
}

func (h *LessonHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := h.lessons.Create(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, lesson)
}

func (h *LessonHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	lessons, err := h.lessons.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons)
}

func (h *LessonHandler) ListByCourse(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	lessons, err := h.lessons.ListByCourse(c.Request.Context(), id, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons)
}

func (h *LessonHandler) Get(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}
	lesson, err := h.lessons.GetByID(c.Request.Context(), id, lessonID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson)
}

func (h *LessonHandler) Update(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.lessons.Update(c.Request.Context(), id, lessonID, req); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LessonHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	lessonID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.lessons.Delete(c.Request.Context(), id, lessonID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
