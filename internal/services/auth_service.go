package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown email, a wrong password or a disabled account.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)

// --- Data Transfer Objects (DTOs) ---

// AuthResponse DTO
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// --- AuthService Interface ---
type AuthService interface {
	RegisterUser(ctx context.Context, req models.RegistrationPayload) (*models.User, error)
	Login(ctx context.Context, req models.Credentials) (*AuthResponse, error)
	GetUserProfile(ctx context.Context, userID int64) (*models.User, error)
}

// --- authService Implementation ---
type authService struct {
	authRepo repositories.AuthRepository
	hashCost int
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository) AuthService {
	return &authService{authRepo: authRepo, hashCost: bcrypt.DefaultCost}
}

// RegisterUser creates a staff account with a bcrypt password hash.
func (s *authService) RegisterUser(ctx context.Context, req models.RegistrationPayload) (*models.User, error) {
	verr := &ValidationError{}
	if utils.IsEmpty(req.Name) {
		verr.Add("name", "is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !utils.IsValidEmail(email) {
		verr.Add("email", "must be a valid email address")
	}
	if !utils.IsValidPasswordLength(req.Password, 8) {
		verr.Add("password", "must be at least 8 characters")
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !models.IsValidRole(role) {
		verr.Add("role", "must be one of [admin server cashier kitchen]")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		IsActive:     true,
	}
	if err := s.authRepo.CreateUser(ctx, nil, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, NewValidationError("email", "has already been taken")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	user.PasswordHash = ""
	utils.LogInfo("User registered", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return user, nil
}

// Login checks the credentials and issues an access token.
func (s *authService) Login(ctx context.Context, req models.Credentials) (*AuthResponse, error) {
	user, err := s.authRepo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateAccessToken(user.ID, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	user.PasswordHash = ""
	return &AuthResponse{User: user, AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// GetUserProfile retrieves a user's profile by their ID.
func (s *authService) GetUserProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "retrieving user profile")
	}
	user.PasswordHash = ""
	return user, nil
}
