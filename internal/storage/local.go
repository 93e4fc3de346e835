package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// localStorage is the filesystem fallback used when no object store is
// configured. References are storage-relative paths served back through the
// /objects route; presigned uploads are not available.
type localStorage struct {
	baseDir string
}

var _ Storage = (*localStorage)(nil)

// NewLocal creates a filesystem-backed storage rooted at baseDir.
func NewLocal(baseDir string) (Storage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &localStorage{baseDir: baseDir}, nil
}

// resolve maps a reference onto the base directory, rejecting traversal out
// of it.
func (l *localStorage) resolve(ref string) (string, error) {
	p := filepath.Join(l.baseDir, filepath.FromSlash(ref))
	if !strings.HasPrefix(p, filepath.Clean(l.baseDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object reference %q", ref)
	}
	return p, nil
}

func (l *localStorage) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (UploadResult, error) {
	key := objectKey(filename)
	path, err := l.resolve(key)
	if err != nil {
		return UploadResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return UploadResult{}, err
	}
	f, err := os.Create(path)
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return UploadResult{}, err
	}
	if err := f.Close(); err != nil {
		return UploadResult{}, err
	}
	return UploadResult{
		URL:      "/objects/" + key,
		Pathname: key,
	}, nil
}

func (l *localStorage) Open(ctx context.Context, ref string) (io.ReadCloser, ObjectInfo, error) {
	path, err := l.resolve(ref)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return f, ObjectInfo{Size: st.Size(), ContentType: ct}, nil
}

func (l *localStorage) Delete(ctx context.Context, ref string) error {
	path, err := l.resolve(ref)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func (l *localStorage) PresignPut(ctx context.Context, filename string, expiry time.Duration) (UploadResult, error) {
	return UploadResult{}, ErrPresignUnsupported
}

func (l *localStorage) Remote() bool { return false }
