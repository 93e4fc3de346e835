package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"snipdrop/internal/model"
	"snipdrop/internal/service"
	serviceMocks "snipdrop/internal/service/mocks"
	"snipdrop/internal/storage"
	"snipdrop/internal/store"
)

func jsonReq(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHealthCheck(t *testing.T) {
	t.Run("with database", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		app := fiber.New()
		app.Get("/health", HealthCheck(db))

		dbMock.ExpectPing().WillReturnError(nil)
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		dbMock.ExpectPing().WillReturnError(errors.New("db error"))
		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("without database", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestGetCode(t *testing.T) {
	mockSvc := new(serviceMocks.MockSnippetService)
	app := fiber.New()
	app.Get("/api/code", GetCode(mockSvc))

	t.Run("success", func(t *testing.T) {
		doc := &model.SharedDocument{ID: "d1", Content: "hello", Language: "go", UpdatedAt: time.Now()}
		mockSvc.On("Get", mock.Anything).Return(doc, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/code", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.SharedDocument
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "hello", result.Content)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything).Return(nil, errors.New("backend down")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/code", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateCode(t *testing.T) {
	mockSvc := new(serviceMocks.MockSnippetService)
	app := fiber.New()
	app.Put("/api/code", UpdateCode(mockSvc))

	t.Run("success", func(t *testing.T) {
		doc := &model.SharedDocument{ID: "d1", Content: "x", Language: "python"}
		mockSvc.On("Update", mock.Anything, mock.MatchedBy(func(upd store.DocumentUpdate) bool {
			return upd.Language != nil && *upd.Language == "python" && upd.Content == nil
		})).Return(doc, nil).Once()

		resp, _ := app.Test(jsonReq(t, http.MethodPut, "/api/code", map[string]string{"language": "python"}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/code", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_BODY", body.Error.Code)
	})

	t.Run("empty update", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, store.DocumentUpdate{}).
			Return(nil, service.ErrEmptyUpdate).Once()

		resp, _ := app.Test(jsonReq(t, http.MethodPut, "/api/code", map[string]string{}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/api/files", ListFiles(mockSvc))

	records := []model.FileRecord{{ID: "f1", Filename: "f.txt", FileSize: "10"}}
	mockSvc.On("List", mock.Anything).Return(records, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result []model.FileRecord
	json.NewDecoder(resp.Body).Decode(&result)
	require.Len(t, result, 1)
	assert.Equal(t, "f1", result[0].ID)
	mockSvc.AssertExpectations(t)
}

func TestUploadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/api/files/upload", UploadFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		content := base64.StdEncoding.EncodeToString([]byte("hello"))
		mockSvc.On("UploadDirect", mock.Anything, "f.txt", content).
			Return(storage.UploadResult{URL: "/objects/files/abc.txt", Pathname: "files/abc.txt"}, nil).Once()

		resp, _ := app.Test(jsonReq(t, http.MethodPost, "/api/files/upload",
			map[string]string{"filename": "f.txt", "file": content}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result storage.UploadResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "files/abc.txt", result.Pathname)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, _ := app.Test(jsonReq(t, http.MethodPost, "/api/files/upload",
			map[string]string{"filename": "f.txt"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "FILE_REQUIRED", body.Error.Code)
	})
}

func TestCreateFileRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/api/files", CreateFileRecord(mockSvc))

	t.Run("success", func(t *testing.T) {
		rec := &model.FileRecord{ID: "f1", Filename: "f.txt", ObjectPath: "https://store/files/abc.txt", FileSize: "10"}
		mockSvc.On("CreateRecord", mock.Anything, "https://store/files/abc.txt", "f.txt", "10").
			Return(rec, nil).Once()

		resp, _ := app.Test(jsonReq(t, http.MethodPost, "/api/files",
			map[string]string{"fileURL": "https://store/files/abc.txt", "filename": "f.txt", "fileSize": "10"}))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid fileSize", func(t *testing.T) {
		resp, _ := app.Test(jsonReq(t, http.MethodPost, "/api/files",
			map[string]string{"fileURL": "u", "filename": "f.txt", "fileSize": "ten"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, _ := app.Test(jsonReq(t, http.MethodPost, "/api/files",
			map[string]string{"filename": "f.txt"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Delete("/api/files/:id", DeleteFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "f1").Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/files/f1", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.NotEmpty(t, body["message"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "ghost").Return(service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/files/ghost", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadToken(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/api/upload/token", UploadToken(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("UploadToken", mock.Anything, "f.txt").
			Return(storage.UploadResult{URL: "https://store/presigned", Pathname: "files/abc.txt"}, nil).Once()

		resp, _ := app.Test(jsonReq(t, http.MethodPost, "/api/upload/token",
			map[string]string{"filename": "f.txt"}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("blob not configured", func(t *testing.T) {
		mockSvc.On("UploadToken", mock.Anything, "f.txt").
			Return(storage.UploadResult{}, service.ErrBlobDisabled).Once()

		resp, _ := app.Test(jsonReq(t, http.MethodPost, "/api/upload/token",
			map[string]string{"filename": "f.txt"}))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "BLOB_NOT_CONFIGURED", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadConfig(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/api/upload/config", UploadConfig(mockSvc))

	mockSvc.On("Config").Return(service.UploadConfig{IsRemoteStore: true}).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/upload/config", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	json.NewDecoder(resp.Body).Decode(&body)
	assert.True(t, body["isRemoteStore"])
	mockSvc.AssertExpectations(t)
}

func TestDownloadObject(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/objects/*", DownloadObject(mockSvc))

	t.Run("streams matched object", func(t *testing.T) {
		mockSvc.On("OpenByPath", mock.Anything, "files/f.txt").
			Return(io.NopCloser(strings.NewReader("payload")), storage.ObjectInfo{Size: 7, ContentType: "text/plain"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/objects/files/f.txt", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))

		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "payload", string(data))
		mockSvc.AssertExpectations(t)
	})

	t.Run("no match", func(t *testing.T) {
		mockSvc.On("OpenByPath", mock.Anything, "ghost.txt").
			Return(nil, storage.ObjectInfo{}, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/objects/ghost.txt", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}
