package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backoffice/internal/models"
	"backoffice/internal/repositories"
	"backoffice/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func registerInput() models.RegisterAdminInput {
	return models.RegisterAdminInput{
		Name:        "Ada Admin",
		Email:       "Ada@Example.com",
		Password:    "password123",
		AdminSecret: "letmein",
	}
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	authService := services.NewAuthService(repo, testJWTSecret, services.WithAdminSecret("letmein"))
	ctx := context.Background()

	user, err := authService.RegisterAdmin(ctx, registerInput())
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))

	_, err = authService.RegisterAdmin(ctx, registerInput())
	assert.ErrorIs(t, err, services.ErrUserExists)

	input := registerInput()
	input.Email = "other@example.com"
	input.AdminSecret = "wrong"
	_, err = authService.RegisterAdmin(ctx, input)
	assert.ErrorIs(t, err, services.ErrInvalidAdminSecret)

	input = registerInput()
	input.Email = "short@example.com"
	input.Password = "12345"
	_, err = authService.RegisterAdmin(ctx, input)
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Violations[0].Field)
}

func TestAuthService_RegisterAdmin_OnboardingDisabled(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret)

	_, err := authService.RegisterAdmin(context.Background(), registerInput())
	assert.ErrorIs(t, err, services.ErrOnboardingDisabled)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterAdmin_StoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, services.WithAdminSecret("letmein"))

	mockRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, errors.New("timeout")).Once()
	_, err := authService.RegisterAdmin(context.Background(), registerInput())
	var unavailable *services.StoreUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, services.WithTokenTTL(time.Hour))
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       "user-123",
		Name:     "Test User",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
	token, loggedIn, err := authService.Login(ctx, models.LoginInput{Email: "Test@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
	assert.InDelta(t, float64(time.Now().Add(time.Hour).Unix()), claims["exp"], 5)

	mockRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
	_, _, err = authService.Login(ctx, models.LoginInput{Email: "test@example.com", Password: "wrongpassword"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	mockRepo.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, errors.Wrap(repositories.ErrNotFound, "user with email nobody@example.com")).Once()
	_, _, err = authService.Login(ctx, models.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login_DemoCredentials(t *testing.T) {
	mockRepo := new(MockUserRepository)
	ctx := context.Background()
	demo := models.LoginInput{Email: services.DemoEmail, Password: services.DemoPassword}

	enabled := services.NewAuthService(mockRepo, testJWTSecret, services.WithDemoLogin(true))
	token, user, err := enabled.Login(ctx, demo)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleAdmin, user.Role)

	disabled := services.NewAuthService(mockRepo, testJWTSecret)
	mockRepo.On("GetByEmail", mock.Anything, services.DemoEmail).Return(nil, errors.Wrap(repositories.ErrNotFound, "demo")).Once()
	_, _, err = disabled.Login(ctx, demo)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"email":   "test@example.com",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	otherSecret, _ := token.SignedString([]byte("other"))
	_, err = authService.ValidateToken(otherSecret)
	assert.Error(t, err)

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}
