package handlers

import (
	"net/http"

	"course-management-backend/dto"
	"course-management-backend/response"
	"course-management-backend/services"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	enrollments services.EnrollmentService
}

func NewEnrollmentHandler(enrollments services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

func (h *EnrollmentHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	enrollments, err := h.enrollments.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) ListByUser(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	enrollments, err := h.enrollments.ListByUser(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) Get(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	enrollmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	enrollment, err := h.enrollments.GetByID(c.Request.Context(), id, enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Cancel hard-deletes the enrollment.
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	enrollmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.enrollments.Cancel(c.Request.Context(), id, enrollmentID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
