package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"snipdrop/internal/model"
	"snipdrop/internal/service"
	"snipdrop/internal/storage"
	"snipdrop/internal/store"
)

type MockSnippetService struct {
	mock.Mock
}

func (m *MockSnippetService) Get(ctx context.Context) (*model.SharedDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SharedDocument), args.Error(1)
}

func (m *MockSnippetService) Update(ctx context.Context, upd store.DocumentUpdate) (*model.SharedDocument, error) {
	args := m.Called(ctx, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SharedDocument), args.Error(1)
}

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) List(ctx context.Context) ([]model.FileRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

func (m *MockFileService) UploadDirect(ctx context.Context, filename, fileB64 string) (storage.UploadResult, error) {
	args := m.Called(ctx, filename, fileB64)
	return args.Get(0).(storage.UploadResult), args.Error(1)
}

func (m *MockFileService) CreateRecord(ctx context.Context, fileURL, filename, fileSize string) (*model.FileRecord, error) {
	args := m.Called(ctx, fileURL, filename, fileSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileService) OpenByPath(ctx context.Context, fragment string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, fragment)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockFileService) UploadToken(ctx context.Context, filename string) (storage.UploadResult, error) {
	args := m.Called(ctx, filename)
	return args.Get(0).(storage.UploadResult), args.Error(1)
}

func (m *MockFileService) Config() service.UploadConfig {
	args := m.Called()
	return args.Get(0).(service.UploadConfig)
}
