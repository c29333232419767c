package services

import (
	"context"
	"fmt"

	"course-management-backend/apierr"
	"course-management-backend/authz"
	"course-management-backend/dto"
	"course-management-backend/logger"
	"course-management-backend/models"
	"course-management-backend/repository"
)

type LessonService interface {
	Create(ctx context.Context, id authz.Identity, req dto.CreateLessonRequest) (*dto.LessonDTO, error)
	GetByID(ctx context.Context, id authz.Identity, lessonID uint) (*dto.LessonDTO, error)
	List(ctx context.Context, id authz.Identity) ([]dto.LessonDTO, error)
	ListByCourse(ctx context.Context, id authz.Identity, courseID uint) ([]dto.LessonDTO, error)
	Update(ctx context.Context, id authz.Identity, lessonID uint, req dto.UpdateLessonRequest) error
	Delete(ctx context.Context, id authz.Identity, lessonID uint) error
}

type lessonService struct {
	log        *logger.Logger
	lessonRepo repository.LessonRepo
	courseRepo repository.CourseRepo
}

func NewLessonService(log *logger.Logger, lessonRepo repository.LessonRepo, courseRepo repository.CourseRepo) LessonService {
	return &lessonService{log: log.With("service", "LessonService"), lessonRepo: lessonRepo, courseRepo: courseRepo}
}

// requireCourse reports a missing or soft-deleted course as a bad request,
// since it is a reference in the payload rather than the addressed resource.
func (ls *lessonService) requireCourse(ctx context.Context, courseID uint) error {
	exists, err := ls.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return fmt.Errorf("check course: %w", err)
	}
	if !exists {
		return apierr.Validation("course with id %d not found", courseID)
	}
	return nil
}

func (ls *lessonService) Create(ctx context.Context, id authz.Identity, req dto.CreateLessonRequest) (*dto.LessonDTO, error) {
	if err := authz.Authorize(id, authz.LessonCreate, 0); err != nil {
		return nil, err
	}
	title, err := requireText("title", req.Title)
	if err != nil {
		return nil, err
	}
	if err := ls.requireCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{Title: title, Content: req.Content, CourseID: req.CourseID}
	if err := ls.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}
	ls.log.Info("lesson created", "lesson_id", lesson.ID, "course_id", lesson.CourseID, "by", id.UserID)
	out := dto.ToLessonDTO(lesson)
	return &out, nil
}

func (ls *lessonService) GetByID(ctx context.Context, id authz.Identity, lessonID uint) (*dto.LessonDTO, error) {
	if err := authz.Authorize(id, authz.LessonRead, 0); err != nil {
		return nil, err
	}
	lesson, err := ls.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, notFoundOr(err, "get lesson", "lesson with id %d not found", lessonID)
	}
	out := dto.ToLessonDTO(lesson)
	return &out, nil
}

func (ls *lessonService) List(ctx context.Context, id authz.Identity) ([]dto.LessonDTO, error) {
	if err := authz.Authorize(id, authz.LessonRead, 0); err != nil {
		return nil, err
	}
	lessons, err := ls.lessonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return dto.ToLessonDTOs(lessons), nil
}

// ListByCourse returns NotFound when the course has no lessons, unlike List.
func (ls *lessonService) ListByCourse(ctx context.Context, id authz.Identity, courseID uint) ([]dto.LessonDTO, error) {
	if err := authz.Authorize(id, authz.LessonRead, 0); err != nil {
		return nil, err
	}
	lessons, err := ls.lessonRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons by course: %w", err)
	}
	if len(lessons) == 0 {
		return nil, apierr.NotFound("no lessons found for course with id %d", courseID)
	}
	return dto.ToLessonDTOs(lessons), nil
}

func (ls *lessonService) Update(ctx context.Context, id authz.Identity, lessonID uint, req dto.UpdateLessonRequest) error {
	if err := authz.Authorize(id, authz.LessonUpdate, 0); err != nil {
		return err
	}
	if err := checkIDMatch(lessonID, req.ID); err != nil {
		return err
	}
	if _, err := ls.lessonRepo.GetByID(ctx, lessonID); err != nil {
		return notFoundOr(err, "get lesson", "lesson with id %d not found", lessonID)
	}
	title, err := requireText("title", req.Title)
	if err != nil {
		return err
	}
	if err := ls.requireCourse(ctx, req.CourseID); err != nil {
		return err
	}

	lesson := &models.Lesson{ID: lessonID, Title: title, Content: req.Content, CourseID: req.CourseID}
	if err := ls.lessonRepo.Update(ctx, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	ls.log.Info("lesson updated", "lesson_id", lessonID, "by", id.UserID)
	return nil
}

func (ls *lessonService) Delete(ctx context.Context, id authz.Identity, lessonID uint) error {
	if err := authz.Authorize(id, authz.LessonDelete, 0); err != nil {
		return err
	}
	if err := ls.lessonRepo.Delete(ctx, lessonID); err != nil {
		return notFoundOr(err, "delete lesson", "lesson with id %d not found", lessonID)
	}
	ls.log.Info("lesson deleted", "lesson_id", lessonID, "by", id.UserID)
	return nil
}
