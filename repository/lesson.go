package repository

import (
	"context"

	"course-management-backend/logger"
	"course-management-backend/models"

	"gorm.io/gorm"
)

type LessonRepo interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	GetByID(ctx context.Context, id uint) (*models.Lesson, error)
	List(ctx context.Context) ([]models.Lesson, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id uint) error
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	return translate(r.db.WithContext(ctx).Create(lesson).Error)
}

func (r *lessonRepo) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, translate(err)
	}
	return &lesson, nil
}

func (r *lessonRepo) List(ctx context.Context) ([]models.Lesson, error) {
	lessons := []models.Lesson{}
	if err := r.db.WithContext(ctx).Order("id").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	lessons := []models.Lesson{}
	if err := r.db.WithContext(ctx).Where("course_id = ?", courseID).Order("id").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).Where("id = ?", lesson.ID).
		Select("title", "content", "course_id").
		Updates(lesson).Error
	return translate(err)
}

// Delete removes the row permanently.
func (r *lessonRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Lesson{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
