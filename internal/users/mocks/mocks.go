package mocks

import (
	"context"

	"github.com/ariefcatur/go-shop-orders/internal/users"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, u users.NewUser) (*users.User, error) {
	args := m.Called(ctx, u)
	return user(args.Get(0)), args.Error(1)
}

func (m *MockStore) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	args := m.Called(ctx, email)
	return user(args.Get(0)), args.Error(1)
}

func user(v any) *users.User {
	if u, ok := v.(*users.User); ok {
		return u
	}
	return nil
}
