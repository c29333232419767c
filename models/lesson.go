package models

type Lesson struct {
	ID       uint   `gorm:"primaryKey"`
	Title    string `gorm:"size:200;not null"`
	Content  string `gorm:"size:5000"`
	CourseID uint   `gorm:"not null;index"`
}
