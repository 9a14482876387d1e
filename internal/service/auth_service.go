package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskhub/internal/auth"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/repository"
)

const bcryptCost = 10

const emailTakenMessage = "This email address is already registered."

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	userRepo            repository.UserRepository
	jwtService          *auth.JWTService
	notifier            notify.Notifier
	allowRoleSelfAssign bool
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, notifier notify.Notifier, allowRoleSelfAssign bool) AuthService {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &authService{
		userRepo:            userRepo,
		jwtService:          jwtService,
		notifier:            notifier,
		allowRoleSelfAssign: allowRoleSelfAssign,
	}
}

// Register creates a user, announces it and issues a token.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	existing, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, "", apperrors.FieldError("email", emailTakenMessage)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	role := in.Role
	if role == "" || (role == model.RoleAdmin && !s.allowRoleSelfAssign) {
		role = model.RoleUser
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.FieldError("email", emailTakenMessage)
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	if err := s.notifier.UserRegistered(ctx, user); err != nil {
		slog.Warn("user.registered notification failed", "user_id", user.ID, "error", err)
	}

	token, err := s.jwtService.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login authenticates a user by email and password. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("login lookup failed", "error", err)
		}
		// Spend the same time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

var (
	dummyHashOnce  sync.Once
	dummyHashValue []byte
)

func dummyHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHashValue, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcryptCost)
	})
	return dummyHashValue
}
