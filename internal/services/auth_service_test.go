package services

import (
	"context"
	"errors"
	"testing"

	"cafe-service/internal/domain"
	"cafe-service/internal/mocks"
	"cafe-service/internal/repository"
	"cafe-service/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		setupMocks    func(*mocks.MockUserRepository, *mocks.MockHasher)
		expectedError error
	}{
		{
			name:     "stores trimmed username with hash",
			username: "  alice ",
			password: " secret1 ",
			setupMocks: func(repo *mocks.MockUserRepository, h *mocks.MockHasher) {
				h.On("Hash", "secret1").Return(testHash, nil)
				repo.On("CreateUser", mock.Anything, "alice", testHash).Return(createMockUser(), nil)
			},
		},
		{
			name:          "blank username",
			username:      "   ",
			password:      "secret1",
			setupMocks:    func(*mocks.MockUserRepository, *mocks.MockHasher) {},
			expectedError: ErrMissingCredentials,
		},
		{
			name:          "blank password",
			username:      "alice",
			password:      "",
			setupMocks:    func(*mocks.MockUserRepository, *mocks.MockHasher) {},
			expectedError: ErrMissingCredentials,
		},
		{
			name:     "username taken",
			username: "alice",
			password: "secret1",
			setupMocks: func(repo *mocks.MockUserRepository, h *mocks.MockHasher) {
				h.On("Hash", "secret1").Return(testHash, nil)
				repo.On("CreateUser", mock.Anything, "alice", testHash).Return(nil, repository.ErrDuplicateUsername)
			},
			expectedError: ErrUsernameTaken,
		},
		{
			name:     "password too long",
			username: "alice",
			password: "secret1",
			setupMocks: func(repo *mocks.MockUserRepository, h *mocks.MockHasher) {
				h.On("Hash", "secret1").Return("", security.ErrPasswordTooLong)
			},
			expectedError: security.ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockUserRepository)
			hasher := new(mocks.MockHasher)
			tt.setupMocks(repo, hasher)

			svc := NewAuthService(repo, hasher, testLog)
			u, err := svc.Register(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, testUsername, u.Username)
			}
			repo.AssertExpectations(t)
			hasher.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_StorageError(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	hasher := new(mocks.MockHasher)
	hasher.On("Hash", "secret1").Return(testHash, nil)
	repo.On("CreateUser", mock.Anything, "alice", testHash).Return(nil, errors.New("connection reset"))

	_, err := NewAuthService(repo, hasher, testLog).Register(context.Background(), "alice", "secret1")

	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		password      string
		setupMocks    func(*mocks.MockUserRepository, *mocks.MockHasher)
		expectedError error
	}{
		{
			name:     "correct password",
			username: "alice",
			password: "secret1",
			setupMocks: func(repo *mocks.MockUserRepository, h *mocks.MockHasher) {
				repo.On("FindUserByUsername", mock.Anything, "alice").Return(createMockUser(), nil)
				h.On("Verify", "secret1", testHash).Return(true)
			},
		},
		{
			name:     "input is trimmed",
			username: " alice",
			password: "secret1 ",
			setupMocks: func(repo *mocks.MockUserRepository, h *mocks.MockHasher) {
				repo.On("FindUserByUsername", mock.Anything, "alice").Return(createMockUser(), nil)
				h.On("Verify", "secret1", testHash).Return(true)
			},
		},
		{
			name:     "wrong password",
			username: "alice",
			password: "nope",
			setupMocks: func(repo *mocks.MockUserRepository, h *mocks.MockHasher) {
				repo.On("FindUserByUsername", mock.Anything, "alice").Return(createMockUser(), nil)
				h.On("Verify", "nope", testHash).Return(false)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "secret1",
			setupMocks: func(repo *mocks.MockUserRepository, h *mocks.MockHasher) {
				repo.On("FindUserByUsername", mock.Anything, "ghost").Return(nil, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:          "missing password",
			username:      "alice",
			setupMocks:    func(*mocks.MockUserRepository, *mocks.MockHasher) {},
			expectedError: ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockUserRepository)
			hasher := new(mocks.MockHasher)
			tt.setupMocks(repo, hasher)

			u, err := NewAuthService(repo, hasher, testLog).Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, u)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, &domain.User{ID: testUserID, Username: testUsername, Password: testHash, CreatedAt: u.CreatedAt}, u)
			}
			repo.AssertExpectations(t)
			hasher.AssertExpectations(t)
		})
	}
}
