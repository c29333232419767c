package models

import "time"

// Enrollment joins a User to a Course. The (UserID, CourseID) pair is unique.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course"` // Foreign key to users table
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course"` // Foreign key to courses table
	EnrollDate time.Time `gorm:"not null"`                                        // Server-assigned, UTC
	User       *User     // Set only when preloaded
	Course     *Course   // Set only when preloaded
}
