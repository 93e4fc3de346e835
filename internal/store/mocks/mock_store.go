package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"snipdrop/internal/model"
	"snipdrop/internal/store"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockStore) CreateUser(ctx context.Context, p store.CreateUserParams) (*model.User, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockStore) GetSharedDocument(ctx context.Context) (*model.SharedDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SharedDocument), args.Error(1)
}

func (m *MockStore) UpdateSharedDocument(ctx context.Context, upd store.DocumentUpdate) (*model.SharedDocument, error) {
	args := m.Called(ctx, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SharedDocument), args.Error(1)
}

func (m *MockStore) CreateSharedDocument(ctx context.Context, p store.DocumentParams) (*model.SharedDocument, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SharedDocument), args.Error(1)
}

func (m *MockStore) GetFileRecords(ctx context.Context) ([]model.FileRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

func (m *MockStore) CreateFileRecord(ctx context.Context, p store.FileRecordParams) (*model.FileRecord, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockStore) DeleteFileRecord(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
