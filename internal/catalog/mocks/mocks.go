package mocks

import (
	"context"

	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, p catalog.NewProduct) (*catalog.Product, error) {
	args := m.Called(ctx, p)
	return product(args.Get(0)), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	return product(args.Get(0)), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, id string, p catalog.Patch) (*catalog.Product, error) {
	args := m.Called(ctx, id, p)
	return product(args.Get(0)), args.Error(1)
}

func (m *MockStore) List(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return products(args.Get(0)), args.Error(1)
}

func (m *MockStore) ListByState(ctx context.Context, state catalog.State, skip, take int) ([]catalog.Product, error) {
	args := m.Called(ctx, state, skip, take)
	return products(args.Get(0)), args.Error(1)
}

func (m *MockStore) CountByState(ctx context.Context, state catalog.State) (int, error) {
	args := m.Called(ctx, state)
	return args.Int(0), args.Error(1)
}

type MockManager struct {
	mock.Mock
}

func (m *MockManager) Create(ctx context.Context, in catalog.NewProduct) (*catalog.Product, error) {
	args := m.Called(ctx, in)
	return product(args.Get(0)), args.Error(1)
}

func (m *MockManager) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	return product(args.Get(0)), args.Error(1)
}

func (m *MockManager) Update(ctx context.Context, id string, in catalog.ProductUpdate) (*catalog.Product, error) {
	args := m.Called(ctx, id, in)
	return product(args.Get(0)), args.Error(1)
}

func (m *MockManager) Delete(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	return product(args.Get(0)), args.Error(1)
}

func (m *MockManager) ListByState(ctx context.Context, state catalog.State, skip, take int) ([]catalog.Product, error) {
	args := m.Called(ctx, state, skip, take)
	return products(args.Get(0)), args.Error(1)
}

func (m *MockManager) ListAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return products(args.Get(0)), args.Error(1)
}

func (m *MockManager) CountByState(ctx context.Context, state catalog.State) (int, error) {
	args := m.Called(ctx, state)
	return args.Int(0), args.Error(1)
}

func product(v any) *catalog.Product {
	if p, ok := v.(*catalog.Product); ok {
		return p
	}
	return nil
}

func products(v any) []catalog.Product {
	if ps, ok := v.([]catalog.Product); ok {
		return ps
	}
	return nil
}
