package repository

import (
	"context"

	"course-management-backend/logger"
	"course-management-backend/models"

	"gorm.io/gorm"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id uint, inc Include) (*models.Enrollment, error)
	List(ctx context.Context, inc Include) ([]models.Enrollment, error)
	ListByUser(ctx context.Context, userID uint, inc Include) ([]models.Enrollment, error)
	Exists(ctx context.Context, userID, courseID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	return &enrollmentRepo{db: db, log: baseLog.With("repo", "EnrollmentRepo")}
}

func (r *enrollmentRepo) query(ctx context.Context, inc Include) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if inc.Has(IncludeUser) {
		q = q.Preload("User")
	}
	if inc.Has(IncludeCourse) {
		q = q.Preload("Course")
		if inc.Has(IncludeLessons) {
			q = q.Preload("Course.Lessons", orderedLessons)
		}
	}
	return q
}

// Create inserts the row only. A unique-index violation on (user, course)
// is reported as ErrDuplicate.
func (r *enrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return translate(r.db.WithContext(ctx).Omit("User", "Course").Create(enrollment).Error)
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id uint, inc Include) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.query(ctx, inc).Where("enrollments.id = ?", id).First(&enrollment).Error; err != nil {
		return nil, translate(err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) List(ctx context.Context, inc Include) ([]models.Enrollment, error) {
	enrollments := []models.Enrollment{}
	if err := r.query(ctx, inc).Order("enrollments.id").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, userID uint, inc Include) ([]models.Enrollment, error) {
	enrollments := []models.Enrollment{}
	if err := r.query(ctx, inc).Where("enrollments.user_id = ?", userID).Order("enrollments.id").Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the row permanently.
func (r *enrollmentRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Enrollment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
