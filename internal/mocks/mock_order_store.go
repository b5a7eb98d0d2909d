package mocks

import (
	"context"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderStore struct {
	mock.Mock
	domain.OrderContextStore
}

func (m *MockOrderStore) Put(ctx context.Context, order domain.OrderContext) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderStore) Get(ctx context.Context, orderID string) (*domain.OrderContext, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderContext), args.Error(1)
}

func (m *MockOrderStore) Delete(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}
