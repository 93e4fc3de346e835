package store

import (
	"context"
	"errors"

	"snipdrop/internal/model"
)

// Package store defines the persistence contract. Exactly one backend
// implementation (memory, postgres, blob) is active per process, selected at
// startup; callers never branch on the backend type.

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// CreateUserParams holds the fields for a new user. The backend assigns the id.
type CreateUserParams struct {
	Username string
	Password string
}

// DocumentParams holds the fields for creating/replacing the shared document.
type DocumentParams struct {
	Content  string
	Language string
}

// DocumentUpdate is a partial update: nil fields leave the current value
// unchanged.
type DocumentUpdate struct {
	Content  *string
	Language *string
}

// FileRecordParams holds the fields for a new catalog entry. The backend
// assigns the id and upload timestamp.
type FileRecordParams struct {
	Filename   string
	ObjectPath string
	FileSize   string
}

// Store is the persistence interface implemented by every backend.
// All operations take a context and return explicit errors; absence is
// signalled with ErrNotFound, not nil results.
type Store interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// CreateUser assigns a new unique id. Username uniqueness is enforced by
	// the backend and surfaces as an error.
	CreateUser(ctx context.Context, p CreateUserParams) (*model.User, error)

	GetSharedDocument(ctx context.Context) (*model.SharedDocument, error)
	// UpdateSharedDocument merges the partial over the current document and
	// refreshes UpdatedAt. If no document exists it creates one, defaulting
	// omitted fields to empty content and the "text" language.
	UpdateSharedDocument(ctx context.Context, upd DocumentUpdate) (*model.SharedDocument, error)
	// CreateSharedDocument unconditionally creates/replaces the singleton.
	CreateSharedDocument(ctx context.Context, p DocumentParams) (*model.SharedDocument, error)

	// GetFileRecords returns the catalog in a stable display order.
	GetFileRecords(ctx context.Context) ([]model.FileRecord, error)
	CreateFileRecord(ctx context.Context, p FileRecordParams) (*model.FileRecord, error)
	// DeleteFileRecord reports whether a record existed and was removed. It
	// must not fail merely because associated byte storage is unreachable;
	// byte cleanup is the caller's (best-effort) concern.
	DeleteFileRecord(ctx context.Context, id string) (bool, error)
}
