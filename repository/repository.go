// Package repository wraps gorm access to the persisted models. Every call
// takes the request context; eager loading is requested explicitly with Include.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Include selects which relations a fetch populates. Nothing is loaded lazily.
type Include uint8

const IncludeNone Include = 0

const (
	IncludeLessons Include = 1 << iota // Course.Lessons, or Enrollment.Course.Lessons with IncludeCourse
	IncludeUser                        // Enrollment.User
	IncludeCourse                      // Enrollment.Course
)

func (i Include) Has(flag Include) bool { return i&flag != 0 }

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func orderedLessons(db *gorm.DB) *gorm.DB {
	return db.Order("lessons.id")
}
