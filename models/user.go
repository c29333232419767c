// user.go - Defines the User model for the database

package models

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleInstructor Role = "Instructor"
	RoleStudent    Role = "Student"
)

// ParseRole maps a client-supplied role name onto a known Role. Empty input
// yields Student.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleStudent, true
	case RoleAdmin, RoleInstructor, RoleStudent:
		return Role(s), true
	}
	return "", false
}

type User struct { // User struct represents a user in the database
	ID          uint         `gorm:"primaryKey"`                         // Unique user ID (primary key)
	Username    string       `gorm:"size:100;uniqueIndex;not null"`      // Unique across active and soft-deleted users
	Password    string       `gorm:"size:255;not null"`                  // bcrypt hash, never the plaintext
	Role        Role         `gorm:"size:20;not null;default:'Student'"` // Admin/Instructor/Student
	IsDeleted   bool         `gorm:"not null;default:false;index"`       // Soft-delete flag
	Enrollments []Enrollment `gorm:"constraint:OnDelete:CASCADE;"`
}
