package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"userapi/internal/model"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Grant(ctx context.Context, req model.UploadGrantRequest) (*model.UploadGrant, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadGrant), args.Error(1)
}

func (m *MockUploadService) GrantForFile(ctx context.Context, req model.UploadFileRequest) (*model.UploadGrant, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadGrant), args.Error(1)
}

func (m *MockUploadService) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
