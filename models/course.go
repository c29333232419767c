package models

import "github.com/shopspring/decimal"

type Course struct {
	ID          uint            `gorm:"primaryKey"`
	Title       string          `gorm:"size:200;not null"`
	Description string          `gorm:"size:1000"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsDeleted   bool            `gorm:"not null;default:false;index"`
	Lessons     []Lesson        `gorm:"constraint:OnDelete:CASCADE;"` // Removed with the course row
	Enrollments []Enrollment    `gorm:"constraint:OnDelete:CASCADE;"`
}
