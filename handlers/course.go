package handlers

import (
	"net/http"

	"course-management-backend/dto"
	"course-management-backend/response"
	"course-management-backend/services"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courses services.CourseService
}

func NewCourseHandler(courses services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

func (h *CourseHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courses.Create(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, course)
}

func (h *CourseHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	courses, err := h.courses.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	course, err := h.courses.GetByID(c.Request.Context(), id, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.courses.Update(c.Request.Context(), id, courseID, req); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.courses.Delete(c.Request.Context(), id, courseID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
