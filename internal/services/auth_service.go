package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/models"
	"backoffice/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Fixed credentials accepted when demo login is enabled.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo123"
)

// AuthService handles admin onboarding and session tokens.
type AuthService struct {
	userRepo    repositories.UserRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	adminSecret string
	demoLogin   bool
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithTokenTTL sets how long issued tokens stay valid.
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) { s.tokenTTL = ttl }
}

// WithAdminSecret sets the secret required to onboard a new admin. An empty secret disables onboarding.
func WithAdminSecret(secret string) AuthOption {
	return func(s *AuthService) { s.adminSecret = secret }
}

// WithDemoLogin enables the fixed demo credentials.
func WithDemoLogin(enabled bool) AuthOption {
	return func(s *AuthService) { s.demoLogin = enabled }
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterAdmin creates an admin account after checking the onboarding secret.
func (s *AuthService) RegisterAdmin(ctx context.Context, input models.RegisterAdminInput) (*models.User, error) {
	if s.adminSecret == "" {
		return nil, errors.WithStack(ErrOnboardingDisabled)
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(input.AdminSecret), []byte(s.adminSecret)) != 1 {
		log.WithField("email", input.Email).Warn("Admin registration with invalid secret")
		return nil, errors.WithStack(ErrInvalidAdminSecret)
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.Wrapf(ErrUserExists, "email %s", input.Email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storeUnavailable(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, errors.Wrapf(ErrUserExists, "email %s", input.Email)
		}
		return nil, storeUnavailable(err)
	}
	log.WithFields(log.Fields{"user_id": user.ID, "email": user.Email}).Info("Admin registered")
	return user, nil
}

// Login authenticates an admin and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, input models.LoginInput) (string, *models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(input); err != nil {
		return "", nil, err
	}

	var user *models.User
	if s.demoLogin && input.Email == DemoEmail && input.Password == DemoPassword {
		user = &models.User{ID: "demo", Name: "Demo Admin", Email: DemoEmail, Role: models.RoleAdmin}
	} else {
		found, err := s.userRepo.GetByEmail(ctx, input.Email)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return "", nil, errors.WithStack(ErrInvalidCredentials)
			}
			return "", nil, storeUnavailable(err)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(input.Password)); err != nil {
			return "", nil, errors.WithStack(ErrInvalidCredentials)
		}
		user = found
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate token")
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.WithError(err).Debug("Token validation failed")
		return nil, errors.Wrap(err, "invalid token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
