package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"snipdrop/internal/model"
	"snipdrop/internal/storage"
	"snipdrop/internal/store"
)

// uploadTokenExpiry bounds the client-to-store handshake window.
const uploadTokenExpiry = 15 * time.Minute

// UploadConfig tells clients which upload path to use.
type UploadConfig struct {
	IsRemoteStore bool `json:"isRemoteStore"`
}

// FileService exposes the file catalog use cases. The catalog holds metadata
// only; bytes live behind storage.Storage.
type FileService interface {
	// List returns the catalog in display order.
	List(ctx context.Context) ([]model.FileRecord, error)
	// UploadDirect decodes base64 content and stores it server-side. The
	// catalog record is created separately via CreateRecord, the same call
	// the client-to-store path uses.
	UploadDirect(ctx context.Context, filename, fileB64 string) (storage.UploadResult, error)
	// CreateRecord adds a catalog entry for an already-stored object. It also
	// serves as the completion notification for the handshake upload path.
	CreateRecord(ctx context.Context, fileURL, filename, fileSize string) (*model.FileRecord, error)
	// Delete removes a catalog entry and best-effort deletes its bytes.
	// Returns ErrNotFound when the id is unknown.
	Delete(ctx context.Context, id string) error
	// OpenByPath resolves a requested path fragment against the catalog and
	// streams the matched object.
	OpenByPath(ctx context.Context, fragment string) (io.ReadCloser, storage.ObjectInfo, error)
	// UploadToken issues a short-lived direct-upload authorization.
	UploadToken(ctx context.Context, filename string) (storage.UploadResult, error)
	// Config reports which upload path clients should use.
	Config() UploadConfig
}

type fileService struct {
	store   store.Store
	objects storage.Storage
}

// NewFileService constructs a FileService.
func NewFileService(st store.Store, objects storage.Storage) FileService {
	return &fileService{store: st, objects: objects}
}

func (s *fileService) List(ctx context.Context) ([]model.FileRecord, error) {
	return s.store.GetFileRecords(ctx)
}

func (s *fileService) UploadDirect(ctx context.Context, filename, fileB64 string) (storage.UploadResult, error) {
	if filename == "" {
		return storage.UploadResult{}, fmt.Errorf("filename is required")
	}
	data, err := base64.StdEncoding.DecodeString(fileB64)
	if err != nil {
		return storage.UploadResult{}, fmt.Errorf("decode file content: %w", err)
	}
	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return s.objects.Upload(ctx, filename, bytes.NewReader(data), int64(len(data)), ct)
}

func (s *fileService) CreateRecord(ctx context.Context, fileURL, filename, fileSize string) (*model.FileRecord, error) {
	if fileURL == "" || filename == "" {
		return nil, fmt.Errorf("fileURL and filename are required")
	}
	rec, err := s.store.CreateFileRecord(ctx, store.FileRecordParams{
		Filename:   filename,
		ObjectPath: fileURL,
		FileSize:   fileSize,
	})
	if err != nil {
		return nil, err
	}
	logEvent(map[string]any{
		"event":     "file_upload_recorded",
		"file_id":   rec.ID,
		"filename":  rec.Filename,
		"file_size": rec.FileSize,
	})
	return rec, nil
}

func (s *fileService) Delete(ctx context.Context, id string) error {
	records, err := s.store.GetFileRecords(ctx)
	if err != nil {
		return err
	}
	var target *model.FileRecord
	for i := range records {
		if records[i].ID == id {
			target = &records[i]
			break
		}
	}

	// Byte deletion is best-effort: catalog removal must succeed even when
	// the object store is unreachable or was never configured.
	if target != nil {
		if err := s.objects.Delete(ctx, storageRef(target.ObjectPath)); err != nil {
			logEvent(map[string]any{
				"event":   "file_bytes_delete_failed",
				"level":   "error",
				"file_id": id,
				"error":   err.Error(),
			})
		}
	}

	ok, err := s.store.DeleteFileRecord(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// storageRef converts a catalog objectPath (absolute URL or relative path,
// depending on backend and history) into the key the storage layer expects.
func storageRef(objectPath string) string {
	if i := strings.Index(objectPath, "files/"); i >= 0 {
		return objectPath[i:]
	}
	return strings.TrimPrefix(objectPath, "/objects/")
}

// matches implements the tolerant path resolution: the reference format
// differs across backends (absolute URL vs relative path) and across older
// catalog entries, so a fragment matches on equality, suffix, or the
// normalized /objects/ form.
func matches(objectPath, fragment string) bool {
	return objectPath == fragment ||
		strings.HasSuffix(objectPath, fragment) ||
		objectPath == "/objects/"+fragment
}

func (s *fileService) OpenByPath(ctx context.Context, fragment string) (io.ReadCloser, storage.ObjectInfo, error) {
	records, err := s.store.GetFileRecords(ctx)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	for _, rec := range records {
		if matches(rec.ObjectPath, fragment) {
			return s.objects.Open(ctx, storageRef(rec.ObjectPath))
		}
	}
	return nil, storage.ObjectInfo{}, ErrNotFound
}

func (s *fileService) UploadToken(ctx context.Context, filename string) (storage.UploadResult, error) {
	res, err := s.objects.PresignPut(ctx, filename, uploadTokenExpiry)
	if errors.Is(err, storage.ErrPresignUnsupported) {
		return storage.UploadResult{}, ErrBlobDisabled
	}
	return res, err
}

func (s *fileService) Config() UploadConfig {
	return UploadConfig{IsRemoteStore: s.objects.Remote()}
}

// logEvent writes one JSON log line, matching the migration logger's shape.
func logEvent(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	data["component"] = "files"
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal file log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

// ParseFileSize validates that a client-provided size is a decimal string.
func ParseFileSize(s string) (string, error) {
	if s == "" {
		return "0", nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return "", fmt.Errorf("fileSize must be a decimal string")
	}
	return s, nil
}
