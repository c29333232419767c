package services

import (
	"context"
	"errors"
	"fmt"

	"course-management-backend/apierr"
	"course-management-backend/auth"
	"course-management-backend/authz"
	"course-management-backend/dto"
	"course-management-backend/events"
	"course-management-backend/logger"
	"course-management-backend/models"
	"course-management-backend/repository"
)

type UserService interface {
	Create(ctx context.Context, id authz.Identity, req dto.RegisterRequest) (*dto.UserDTO, error)
	GetByID(ctx context.Context, id authz.Identity, userID uint) (*dto.UserDTO, error)
	List(ctx context.Context, id authz.Identity) ([]dto.UserDTO, error)
	Update(ctx context.Context, id authz.Identity, userID uint, req dto.UpdateUserRequest) error
	Delete(ctx context.Context, id authz.Identity, userID uint) error
}

type userService struct {
	log      *logger.Logger
	userRepo repository.UserRepo
	events   events.Publisher
}

func NewUserService(log *logger.Logger, userRepo repository.UserRepo, pub events.Publisher) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo, events: pub}
}

func (us *userService) Create(ctx context.Context, id authz.Identity, req dto.RegisterRequest) (*dto.UserDTO, error) {
	if err := authz.Authorize(id, authz.UserCreate, 0); err != nil {
		return nil, err
	}
	user, err := createUser(ctx, us.userRepo, req)
	if err != nil {
		return nil, err
	}
	out := dto.ToUserDTO(user)
	us.log.Info("user created", "user_id", user.ID, "by", id.UserID)
	us.events.Publish(ctx, events.UserRegistered, out)
	return &out, nil
}

func (us *userService) GetByID(ctx context.Context, id authz.Identity, userID uint) (*dto.UserDTO, error) {
	if err := authz.Authorize(id, authz.UserRead, userID); err != nil {
		return nil, err
	}
	user, err := us.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "get user", "user with id %d not found", userID)
	}
	out := dto.ToUserDTO(user)
	return &out, nil
}

func (us *userService) List(ctx context.Context, id authz.Identity) ([]dto.UserDTO, error) {
	if err := authz.Authorize(id, authz.UserList, 0); err != nil {
		return nil, err
	}
	users, err := us.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return dto.ToUserDTOs(users), nil
}

// Update replaces username and password. The role changes only when the
// caller is an Admin and supplies one.
func (us *userService) Update(ctx context.Context, id authz.Identity, userID uint, req dto.UpdateUserRequest) error {
	if err := authz.Authorize(id, authz.UserUpdate, userID); err != nil {
		return err
	}
	if err := checkIDMatch(userID, req.ID); err != nil {
		return err
	}
	existing, err := us.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "get user", "user with id %d not found", userID)
	}

	username, err := requireText("username", req.Username)
	if err != nil {
		return err
	}
	if err := checkPassword(req.Password); err != nil {
		return err
	}
	role := existing.Role
	if id.IsAdmin() && req.Role != "" {
		parsed, ok := models.ParseRole(req.Role)
		if !ok {
			return apierr.Validation("unknown role %q", req.Role)
		}
		role = parsed
	}

	if username != existing.Username {
		taken, err := us.userRepo.UsernameExists(ctx, username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return apierr.Conflict("username %q is already taken", username)
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	updated := &models.User{ID: userID, Username: username, Password: hash, Role: role}
	if err := us.userRepo.Update(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apierr.Conflict("username %q is already taken", username)
		}
		return fmt.Errorf("update user: %w", err)
	}
	us.log.Info("user updated", "user_id", userID, "by", id.UserID)
	return nil
}

func (us *userService) Delete(ctx context.Context, id authz.Identity, userID uint) error {
	if err := authz.Authorize(id, authz.UserDelete, userID); err != nil {
		return err
	}
	if err := us.userRepo.SoftDelete(ctx, userID); err != nil {
		return notFoundOr(err, "delete user", "user with id %d not found", userID)
	}
	us.log.Info("user deleted", "user_id", userID, "by", id.UserID)
	return nil
}
