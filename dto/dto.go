// Package dto defines the request and response shapes of the HTTP API and the
// pure mapping from persisted models. Mapping never touches the database.
package dto

import (
	"time"

	"course-management-backend/models"

	"github.com/shopspring/decimal"
)

type UserDTO struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

type LessonDTO struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	CourseID uint   `json:"courseId"`
}

type CourseDTO struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Lessons     []LessonDTO     `json:"lessons"`
}

// EnrollmentDTO carries nested User/Course only when they were preloaded.
type EnrollmentDTO struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"userId"`
	CourseID   uint       `json:"courseId"`
	EnrollDate time.Time  `json:"enrollDate"`
	User       *UserDTO   `json:"user,omitempty"`
	Course     *CourseDTO `json:"course,omitempty"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}

func ToUserDTO(u *models.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Role: u.Role}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, ToUserDTO(&users[i]))
	}
	return out
}

func ToLessonDTO(l *models.Lesson) LessonDTO {
	return LessonDTO{ID: l.ID, Title: l.Title, Content: l.Content, CourseID: l.CourseID}
}

func ToLessonDTOs(lessons []models.Lesson) []LessonDTO {
	out := make([]LessonDTO, 0, len(lessons))
	for i := range lessons {
		out = append(out, ToLessonDTO(&lessons[i]))
	}
	return out
}

// ToCourseDTO always sets Lessons to a non-nil slice.
func ToCourseDTO(c *models.Course) CourseDTO {
	return CourseDTO{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		Lessons:     ToLessonDTOs(c.Lessons),
	}
}

func ToCourseDTOs(courses []models.Course) []CourseDTO {
	out := make([]CourseDTO, 0, len(courses))
	for i := range courses {
		out = append(out, ToCourseDTO(&courses[i]))
	}
	return out
}

func ToEnrollmentDTO(e *models.Enrollment) EnrollmentDTO {
	out := EnrollmentDTO{
		ID:         e.ID,
		UserID:     e.UserID,
		CourseID:   e.CourseID,
		EnrollDate: e.EnrollDate.UTC(),
	}
	if e.User != nil {
		u := ToUserDTO(e.User)
		out.User = &u
	}
	if e.Course != nil {
		c := ToCourseDTO(e.Course)
		out.Course = &c
	}
	return out
}

func ToEnrollmentDTOs(enrollments []models.Enrollment) []EnrollmentDTO {
	out := make([]EnrollmentDTO, 0, len(enrollments))
	for i := range enrollments {
		out = append(out, ToEnrollmentDTO(&enrollments[i]))
	}
	return out
}
