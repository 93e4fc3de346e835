package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"snipdrop/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (storage.UploadResult, error) {
	args := m.Called(ctx, filename, r, size, contentType)
	return args.Get(0).(storage.UploadResult), args.Error(1)
}

func (m *MockStorage) Open(ctx context.Context, ref string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockStorage) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockStorage) PresignPut(ctx context.Context, filename string, expiry time.Duration) (storage.UploadResult, error) {
	args := m.Called(ctx, filename, expiry)
	return args.Get(0).(storage.UploadResult), args.Error(1)
}

func (m *MockStorage) Remote() bool {
	args := m.Called()
	return args.Bool(0)
}
