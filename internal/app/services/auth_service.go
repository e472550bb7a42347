package services

import (
	"context"
	"fmt"

	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/pkg/apperrors"
	"github.com/studenthub/backend/internal/pkg/auth"
	"github.com/studenthub/backend/internal/pkg/logger"
)

// userStore is the credential persistence surface the auth service needs.
type userStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateStudentAccount(ctx context.Context, student *models.Student, user *models.User) error
}

type rollChecker interface {
	RollExists(ctx context.Context, roll string) (bool, error)
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo    userStore
	studentRepo rollChecker
	jwtService  *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo userStore, studentRepo rollChecker, jwtService *auth.JWTService) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		studentRepo: studentRepo,
		jwtService:  jwtService,
	}
}

// Register creates a Student record and its credential User atomically.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	emailTaken, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if emailTaken {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	rollTaken, err := s.studentRepo.RollExists(ctx, req.Roll)
	if err != nil {
		return nil, fmt.Errorf("error checking roll: %w", err)
	}
	if rollTaken {
		return nil, apperrors.ErrRollAlreadyExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	student := &models.Student{
		Name:       req.Name,
		Roll:       req.Roll,
		Email:      req.Email,
		Department: req.Department,
		Year:       req.Year,
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleStudent,
	}

	if err := s.userRepo.CreateStudentAccount(ctx, student, user); err != nil {
		return nil, err
	}

	logger.Info().Int64("userId", user.ID).Int64("studentId", student.ID).Msg("Student account registered")
	return &dto.RegisterResponse{User: sanitizeUser(user)}, nil
}

// Login validates credentials and issues a signed token.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Not-found collapses to invalid credentials; login never reveals
		// which half was wrong.
		if err == apperrors.ErrUserNotFound {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &dto.LoginResponse{Token: token, User: sanitizeUser(user)}, nil
}

func sanitizeUser(user *models.User) dto.UserData {
	return dto.UserData{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		StudentID: user.StudentID,
	}
}
