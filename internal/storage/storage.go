package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains the byte-storage abstraction for uploaded files.
// The file catalog records only the reference a Storage returned; the byte
// payload lifecycle belongs here.

// ErrPresignUnsupported is returned by backends that cannot issue direct
// client-to-store upload URLs (the local filesystem fallback). Clients check
// /api/upload/config and use the server-mediated path instead.
var ErrPresignUnsupported = errors.New("presigned uploads not supported")

// UploadResult identifies a stored object. URL is what browsers fetch
// (absolute for remote storage, /objects/... for the local fallback);
// Pathname is the storage-relative key.
type UploadResult struct {
	URL      string `json:"uploadURL"`
	Pathname string `json:"pathname"`
}

// ObjectInfo carries the metadata needed to serve a download.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// Storage stores and serves file bytes. Implementations must be safe for
// concurrent use and must not buffer whole objects on disk.
type Storage interface {
	// Upload stores r under a new key derived from filename and returns the
	// reference to record in the catalog.
	Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (UploadResult, error)
	// Open returns the object's content as a streaming reader with its info.
	Open(ctx context.Context, ref string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes the object behind ref.
	Delete(ctx context.Context, ref string) error
	// PresignPut returns a short-lived URL a client can PUT bytes to
	// directly, plus the pathname the resulting object will have.
	PresignPut(ctx context.Context, filename string, expiry time.Duration) (UploadResult, error)
	// Remote reports whether this storage is a remote object store (and so
	// supports the client-to-store upload handshake).
	Remote() bool
}
