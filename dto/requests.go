package dto

import "github.com/shopspring/decimal"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is also used by admins creating users.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	ID       uint   `json:"id"`
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type CreateCourseRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=1000"`
	Price       decimal.Decimal `json:"price"`
}

type UpdateCourseRequest struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=1000"`
	Price       decimal.Decimal `json:"price"`
}

type CreateLessonRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"max=5000"`
	CourseID uint   `json:"courseId" binding:"required"`
}

type UpdateLessonRequest struct {
	ID       uint   `json:"id"`
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"max=5000"`
	CourseID uint   `json:"courseId" binding:"required"`
}

type CreateEnrollmentRequest struct {
	UserID   uint `json:"userId" binding:"required"`
	CourseID uint `json:"courseId" binding:"required"`
}
