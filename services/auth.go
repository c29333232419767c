package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"course-management-backend/apierr"
	"course-management-backend/auth"
	"course-management-backend/dto"
	"course-management-backend/events"
	"course-management-backend/logger"
	"course-management-backend/models"
	"course-management-backend/repository"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserDTO, error)
}

type authService struct {
	log      *logger.Logger
	userRepo repository.UserRepo
	tokens   *auth.TokenManager
	events   events.Publisher
}

func NewAuthService(log *logger.Logger, userRepo repository.UserRepo, tokens *auth.TokenManager, pub events.Publisher) AuthService {
	return &authService{
		log:      log.With("service", "AuthService"),
		userRepo: userRepo,
		tokens:   tokens,
		events:   pub,
	}
}

func (as *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apierr.Validation("username and password are required")
	}

	user, err := as.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("login lookup: %w", err)
		}
		auth.BurnCompare(req.Password)
		return nil, apierr.Unauthorized("invalid username or password")
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		as.log.Info("login rejected", "user_id", user.ID)
		return nil, apierr.Unauthorized("invalid username or password")
	}

	token, expiresAt, err := as.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	as.log.Info("login succeeded", "user_id", user.ID, "role", user.Role)
	return &dto.LoginResponse{Token: token, ExpiresAt: expiresAt.UTC(), User: dto.ToUserDTO(user)}, nil
}

func (as *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserDTO, error) {
	user, err := createUser(ctx, as.userRepo, req)
	if err != nil {
		return nil, err
	}
	out := dto.ToUserDTO(user)
	as.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	as.events.Publish(ctx, events.UserRegistered, out)
	return &out, nil
}

// createUser validates, hashes and stores a new user. Username uniqueness
// covers soft-deleted users as well.
func createUser(ctx context.Context, userRepo repository.UserRepo, req dto.RegisterRequest) (*models.User, error) {
	username, err := requireText("username", req.Username)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, apierr.Validation("unknown role %q", req.Role)
	}

	taken, err := userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, apierr.Conflict("username %q is already taken", username)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: username, Password: hash, Role: role}
	if err := userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierr.Conflict("username %q is already taken", username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
