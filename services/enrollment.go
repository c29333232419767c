package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"course-management-backend/apierr"
	"course-management-backend/authz"
	"course-management-backend/dto"
	"course-management-backend/events"
	"course-management-backend/logger"
	"course-management-backend/models"
	"course-management-backend/repository"
)

// Enrollment reads populate the nested user and course.
const enrollmentIncludes = repository.IncludeUser | repository.IncludeCourse

type EnrollmentService interface {
	Create(ctx context.Context, id authz.Identity, req dto.CreateEnrollmentRequest) (*dto.EnrollmentDTO, error)
	GetByID(ctx context.Context, id authz.Identity, enrollmentID uint) (*dto.EnrollmentDTO, error)
	List(ctx context.Context, id authz.Identity) ([]dto.EnrollmentDTO, error)
	ListByUser(ctx context.Context, id authz.Identity, userID uint) ([]dto.EnrollmentDTO, error)
	Cancel(ctx context.Context, id authz.Identity, enrollmentID uint) error
}

type enrollmentService struct {
	log            *logger.Logger
	enrollmentRepo repository.EnrollmentRepo
	userRepo       repository.UserRepo
	courseRepo     repository.CourseRepo
	events         events.Publisher
	now            func() time.Time
}

func NewEnrollmentService(
	log *logger.Logger,
	enrollmentRepo repository.EnrollmentRepo,
	userRepo repository.UserRepo,
	courseRepo repository.CourseRepo,
	pub events.Publisher,
) EnrollmentService {
	return &enrollmentService{
		log:            log.With("service", "EnrollmentService"),
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		events:         pub,
		now:            time.Now,
	}
}

func (es *enrollmentService) Create(ctx context.Context, id authz.Identity, req dto.CreateEnrollmentRequest) (*dto.EnrollmentDTO, error) {
	if err := authz.Authorize(id, authz.EnrollmentCreate, req.UserID); err != nil {
		return nil, err
	}

	userOK, err := es.userRepo.Exists(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !userOK {
		return nil, apierr.Validation("user with id %d not found", req.UserID)
	}
	courseOK, err := es.courseRepo.Exists(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check course: %w", err)
	}
	if !courseOK {
		return nil, apierr.Validation("course with id %d not found", req.CourseID)
	}

	// Optimistic pre-check; the unique index is authoritative.
	enrolled, err := es.enrollmentRepo.Exists(ctx, req.UserID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return nil, apierr.Conflict("user is already enrolled in this course")
	}

	enrollment := &models.Enrollment{UserID: req.UserID, CourseID: req.CourseID, EnrollDate: es.now().UTC()}
	if err := es.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierr.Conflict("user is already enrolled in this course")
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	out := dto.ToEnrollmentDTO(enrollment)
	es.log.Info("enrollment created", "enrollment_id", enrollment.ID, "user_id", req.UserID, "course_id", req.CourseID)
	es.events.Publish(ctx, events.EnrollmentCreated, out)
	return &out, nil
}

func (es *enrollmentService) GetByID(ctx context.Context, id authz.Identity, enrollmentID uint) (*dto.EnrollmentDTO, error) {
	enrollment, err := es.enrollmentRepo.GetByID(ctx, enrollmentID, enrollmentIncludes)
	if err != nil {
		return nil, notFoundOr(err, "get enrollment", "enrollment with id %d not found", enrollmentID)
	}
	if err := authz.Authorize(id, authz.EnrollmentRead, enrollment.UserID); err != nil {
		return nil, err
	}
	out := dto.ToEnrollmentDTO(enrollment)
	return &out, nil
}

func (es *enrollmentService) List(ctx context.Context, id authz.Identity) ([]dto.EnrollmentDTO, error) {
	if err := authz.Authorize(id, authz.EnrollmentList, 0); err != nil {
		return nil, err
	}
	enrollments, err := es.enrollmentRepo.List(ctx, enrollmentIncludes)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return dto.ToEnrollmentDTOs(enrollments), nil
}

// ListByUser returns NotFound when the user has no enrollments, unlike List.
func (es *enrollmentService) ListByUser(ctx context.Context, id authz.Identity, userID uint) ([]dto.EnrollmentDTO, error) {
	if err := authz.Authorize(id, authz.EnrollmentListByUser, userID); err != nil {
		return nil, err
	}
	enrollments, err := es.enrollmentRepo.ListByUser(ctx, userID, enrollmentIncludes)
	if err != nil {
		return nil, fmt.Errorf("list enrollments by user: %w", err)
	}
	if len(enrollments) == 0 {
		return nil, apierr.NotFound("no enrollments found for user with id %d", userID)
	}
	return dto.ToEnrollmentDTOs(enrollments), nil
}

func (es *enrollmentService) Cancel(ctx context.Context, id authz.Identity, enrollmentID uint) error {
	enrollment, err := es.enrollmentRepo.GetByID(ctx, enrollmentID, repository.IncludeNone)
	if err != nil {
		return notFoundOr(err, "get enrollment", "enrollment with id %d not found", enrollmentID)
	}
	if err := authz.Authorize(id, authz.EnrollmentCancel, enrollment.UserID); err != nil {
		return err
	}
	if err := es.enrollmentRepo.Delete(ctx, enrollmentID); err != nil {
		return notFoundOr(err, "delete enrollment", "enrollment with id %d not found", enrollmentID)
	}
	es.log.Info("enrollment cancelled", "enrollment_id", enrollmentID, "by", id.UserID)
	es.events.Publish(ctx, events.EnrollmentCancelled, dto.ToEnrollmentDTO(enrollment))
	return nil
}
