package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mompick/backend/internal/database"
	"github.com/mompick/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileExists      = errors.New("profile already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service handles all authentication operations
type Service struct {
	jwtSecret []byte
}

// NewService creates a new authentication service
func NewService(jwtSecret []byte) *Service {
	return &Service{jwtSecret: jwtSecret}
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token     string         `json:"token"`
	Profile   models.Profile `json:"profile"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=1,max=50"`
	Nickname string `json:"nickname" binding:"max=30"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new profile with email/password
func (s *Service) Register(req RegisterRequest) (*AuthResponse, error) {
	// Check if profile exists by email (case-insensitive)
	var existing models.Profile
	err := database.DB.Where("LOWER(email) = LOWER(?)", req.Email).First(&existing).Error
	if err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	hashedPasswordStr := string(hashedPassword)
	profile := models.Profile{
		ID:           uuid.New().String(),
		Email:        req.Email,
		FullName:     req.FullName,
		Nickname:     req.Nickname,
		PasswordHash: &hashedPasswordStr,
	}

	if err := database.DB.Create(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.generateAuthResponse(&profile)
}

// Login authenticates with email/password
func (s *Service) Login(req LoginRequest) (*AuthResponse, error) {
	var profile models.Profile
	err := database.DB.Where("LOWER(email) = LOWER(?)", req.Email).First(&profile).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if profile.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	profile.LastActiveAt = &now
	database.DB.Save(&profile)

	return s.generateAuthResponse(&profile)
}

// generateAuthResponse creates JWT token and auth response
func (s *Service) generateAuthResponse(profile *models.Profile) (*AuthResponse, error) {
	expiresAt := time.Now().Add(24 * time.Hour)

	claims := jwt.MapClaims{
		"profile_id": profile.ID,
		"email":      profile.Email,
		"is_admin":   profile.IsAdmin,
		"exp":        expiresAt.Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     tokenString,
		Profile:   *profile,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken validates a JWT token and returns the fresh profile
func (s *Service) ValidateToken(tokenString string) (*models.Profile, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	profileID, ok := claims["profile_id"].(string)
	if !ok {
		return nil, errors.New("invalid profile_id in token")
	}

	var profile models.Profile
	if err := database.DB.Where("id = ?", profileID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("profile not found: %w", err)
	}

	return &profile, nil
}
