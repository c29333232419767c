package services

import (
	"context"
	"fmt"

	"course-management-backend/apierr"
	"course-management-backend/authz"
	"course-management-backend/dto"
	"course-management-backend/events"
	"course-management-backend/logger"
	"course-management-backend/models"
	"course-management-backend/repository"
)

type CourseService interface {
	Create(ctx context.Context, id authz.Identity, req dto.CreateCourseRequest) (*dto.CourseDTO, error)
	GetByID(ctx context.Context, id authz.Identity, courseID uint) (*dto.CourseDTO, error)
	List(ctx context.Context, id authz.Identity) ([]dto.CourseDTO, error)
	Update(ctx context.Context, id authz.Identity, courseID uint, req dto.UpdateCourseRequest) error
	Delete(ctx context.Context, id authz.Identity, courseID uint) error
}

type courseService struct {
	log        *logger.Logger
	courseRepo repository.CourseRepo
	events     events.Publisher
}

func NewCourseService(log *logger.Logger, courseRepo repository.CourseRepo, pub events.Publisher) CourseService {
	return &courseService{log: log.With("service", "CourseService"), courseRepo: courseRepo, events: pub}
}

func (cs *courseService) Create(ctx context.Context, id authz.Identity, req dto.CreateCourseRequest) (*dto.CourseDTO, error) {
	if err := authz.Authorize(id, authz.CourseCreate, 0); err != nil {
		return nil, err
	}
	title, err := requireText("title", req.Title)
	if err != nil {
		return nil, err
	}
	if err := checkPrice(req.Price); err != nil {
		return nil, err
	}

	course := &models.Course{Title: title, Description: req.Description, Price: req.Price}
	if err := cs.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	out := dto.ToCourseDTO(course)
	cs.log.Info("course created", "course_id", course.ID, "by", id.UserID)
	cs.events.Publish(ctx, events.CourseCreated, out)
	return &out, nil
}

func (cs *courseService) GetByID(ctx context.Context, id authz.Identity, courseID uint) (*dto.CourseDTO, error) {
	if err := authz.Authorize(id, authz.CourseRead, 0); err != nil {
		return nil, err
	}
	course, err := cs.courseRepo.GetByID(ctx, courseID, repository.IncludeLessons)
	if err != nil {
		return nil, notFoundOr(err, "get course", "course with id %d not found", courseID)
	}
	out := dto.ToCourseDTO(course)
	return &out, nil
}

func (cs *courseService) List(ctx context.Context, id authz.Identity) ([]dto.CourseDTO, error) {
	if err := authz.Authorize(id, authz.CourseRead, 0); err != nil {
		return nil, err
	}
	courses, err := cs.courseRepo.List(ctx, repository.IncludeLessons)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return dto.ToCourseDTOs(courses), nil
}

func (cs *courseService) Update(ctx context.Context, id authz.Identity, courseID uint, req dto.UpdateCourseRequest) error {
	if err := authz.Authorize(id, authz.CourseUpdate, 0); err != nil {
		return err
	}
	if err := checkIDMatch(courseID, req.ID); err != nil {
		return err
	}
	exists, err := cs.courseRepo.Exists(ctx, courseID)
	if err != nil {
		return fmt.Errorf("check course: %w", err)
	}
	if !exists {
		return apierr.NotFound("course with id %d not found", courseID)
	}
	title, err := requireText("title", req.Title)
	if err != nil {
		return err
	}
	if err := checkPrice(req.Price); err != nil {
		return err
	}

	course := &models.Course{ID: courseID, Title: title, Description: req.Description, Price: req.Price}
	if err := cs.courseRepo.Update(ctx, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	cs.log.Info("course updated", "course_id", courseID, "by", id.UserID)
	return nil
}

func (cs *courseService) Delete(ctx context.Context, id authz.Identity, courseID uint) error {
	if err := authz.Authorize(id, authz.CourseDelete, 0); err != nil {
		return err
	}
	if err := cs.courseRepo.SoftDelete(ctx, courseID); err != nil {
		return notFoundOr(err, "delete course", "course with id %d not found", courseID)
	}
	cs.log.Info("course deleted", "course_id", courseID, "by", id.UserID)
	cs.events.Publish(ctx, events.CourseDeleted, map[string]uint{"id": courseID})
	return nil
}
