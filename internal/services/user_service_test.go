package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gudang/internal/models"
	"gudang/internal/repositories"
	"gudang/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func TestUserService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, "test_jwt_secret", bcrypt.MinCost)
	ctx := context.Background()

	// Successful registration: the stored password is a hash, never the
	// plaintext input.
	user := &models.User{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: "password123",
	}
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, repositories.ErrUserNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := userService.Register(ctx, user)
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Email is lowercased and trimmed before the uniqueness check.
	user = &models.User{Name: "Test User", Email: "  Mixed@Example.COM ", Password: "password123"}
	mockRepo.On("GetByEmail", ctx, "mixed@example.com").Return(nil, repositories.ErrUserNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	err = userService.Register(ctx, user)
	assert.NoError(t, err)
	assert.Equal(t, "mixed@example.com", user.Email)
	mockRepo.AssertExpectations(t)

	// Duplicate email fails regardless of name and password.
	user = &models.User{Name: "Someone Else", Email: "test@example.com", Password: "different456"}
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(&models.User{ID: primitive.NewObjectID()}, nil).Once()

	err = userService.Register(ctx, user)
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
	mockRepo.AssertExpectations(t)

	// A store failure during the lookup propagates as an error, not a
	// duplicate.
	user = &models.User{Name: "Test User", Email: "broken@example.com", Password: "password123"}
	mockRepo.On("GetByEmail", ctx, "broken@example.com").Return(nil, fmt.Errorf("connection reset")).Once()

	err = userService.Register(ctx, user)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrDuplicateEmail)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	userService := services.NewUserService(mockRepo, testJWTSecret, bcrypt.MinCost)
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Test User",
		Email:    "test@example.com",
		Password: string(hashedPassword),
	}

	// Successful login returns the user and a token carrying its claims.
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
	gotUser, token, err := userService.Authenticate(ctx, "test@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, user.Name, gotUser.Name)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID.Hex(), claims["user_id"])
	assert.Equal(t, user.Name, claims["name"])
	mockRepo.AssertExpectations(t)

	// Wrong password and unknown email fail with the same error, so the
	// response cannot reveal which one occurred.
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(user, nil).Once()
	_, _, wrongPassErr := userService.Authenticate(ctx, "test@example.com", "wrongpassword")
	assert.ErrorIs(t, wrongPassErr, services.ErrInvalidCredentials)

	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, repositories.ErrUserNotFound).Once()
	_, _, unknownErr := userService.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, unknownErr, services.ErrInvalidCredentials)

	assert.Equal(t, wrongPassErr.Error(), unknownErr.Error())
	mockRepo.AssertExpectations(t)
}

func TestUserService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	testJWTSecret := "test_jwt_secret"
	userService := services.NewUserService(mockRepo, testJWTSecret, bcrypt.MinCost)

	// Valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"name":    "Test User",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := userService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "Test User", claims["name"])

	// Garbage token
	_, err = userService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = userService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := services.NewUserService(mockRepo, "test_jwt_secret", bcrypt.MinCost)
	ctx := context.Background()

	expected := []models.User{
		{ID: primitive.NewObjectID(), Name: "Newest"},
		{ID: primitive.NewObjectID(), Name: "Oldest"},
	}
	mockRepo.On("GetAll", ctx).Return(expected, nil).Once()

	users, err := userService.ListUsers(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expected, users)
	mockRepo.AssertExpectations(t)
}
