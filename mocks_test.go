package heritage_test

import (
	"context"

	"github.com/heritagehq/heritage"
	"github.com/stretchr/testify/mock"
)

// MockUserTracker implements heritage.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByIdentifier(ctx context.Context, identifier string) (*heritage.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*heritage.User), args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *heritage.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *heritage.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockAuthenticator implements heritage.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) UserFromToken(ctx context.Context, raw string) (*heritage.User, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*heritage.User), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, raw string) error {
	args := m.Called(ctx, raw)
	return args.Error(0)
}

// TestIdentity implements heritage.Identity
type TestIdentity struct {
	id       string
	username string
	email    string
	role     string
}

func (t TestIdentity) ID() string       { return t.id }
func (t TestIdentity) Username() string { return t.username }
func (t TestIdentity) Email() string    { return t.email }
func (t TestIdentity) Role() string     { return t.role }
