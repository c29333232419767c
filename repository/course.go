package repository

import (
	"context"

	"course-management-backend/logger"
	"course-management-backend/models"

	"gorm.io/gorm"
)

type CourseRepo interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint, inc Include) (*models.Course, error)
	List(ctx context.Context, inc Include) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	SoftDelete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) active(ctx context.Context, inc Include) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Course{}).Where("courses.is_deleted = ?", false)
	if inc.Has(IncludeLessons) {
		q = q.Preload("Lessons", orderedLessons)
	}
	return q
}

func (r *courseRepo) Create(ctx context.Context, course *models.Course) error {
	return translate(r.db.WithContext(ctx).Omit("Lessons", "Enrollments").Create(course).Error)
}

func (r *courseRepo) GetByID(ctx context.Context, id uint, inc Include) (*models.Course, error) {
	var course models.Course
	if err := r.active(ctx, inc).Where("courses.id = ?", id).First(&course).Error; err != nil {
		return nil, translate(err)
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, inc Include) ([]models.Course, error) {
	courses := []models.Course{}
	if err := r.active(ctx, inc).Order("courses.id").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) Update(ctx context.Context, course *models.Course) error {
	err := r.active(ctx, IncludeNone).Where("courses.id = ?", course.ID).
		Select("title", "description", "price").
		Updates(course).Error
	return translate(err)
}

func (r *courseRepo) SoftDelete(ctx context.Context, id uint) error {
	res := r.active(ctx, IncludeNone).Where("courses.id = ?", id).Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.log.Debug("course soft-deleted", "course_id", id)
	return nil
}

func (r *courseRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.active(ctx, IncludeNone).Where("courses.id = ?", id).Count(&count).Error
	return count > 0, err
}
