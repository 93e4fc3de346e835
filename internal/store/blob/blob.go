package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"snipdrop/internal/model"
	"snipdrop/internal/store"
)

// Well-known keys for the JSON-serialized collections. Each logical
// collection is one object in the bucket.
const (
	documentKey = "data/document.json"
	filesKey    = "data/files.json"
	usersKey    = "data/users.json"
)

// objectClient is the minimal object-store surface the blob backend needs.
// The minio implementation lives in minio.go; tests substitute an in-memory
// fake.
type objectClient interface {
	// List returns the keys present under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Get returns the content of the object at key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes content at key with a public-read policy.
	Put(ctx context.Context, key string, data []byte) error
	// Remove deletes the object at key.
	Remove(ctx context.Context, key string) error
}

// Store keeps every collection as a single JSON blob in a remote object
// store. Reads that fail for any reason fall back to the caller's default so
// the UI stays usable through transient storage errors, at the cost of
// serving stale or empty data. Writes surface their errors.
//
// When constructed without credentials the store runs degraded: reads return
// defaults, writes no-op, deletes report success. The process then behaves
// as a read-only empty deployment instead of crashing.
type Store struct {
	client objectClient // nil in degraded mode
}

var _ store.Store = (*Store)(nil)

// readCollection fetches and decodes the object at key into out. Any failure
// (missing object, transport error, bad JSON) leaves out untouched and
// reports false; the caller proceeds with its default value.
func (s *Store) readCollection(ctx context.Context, key string, out any) bool {
	if s.client == nil {
		return false
	}
	keys, err := s.client.List(ctx, key)
	if err != nil || len(keys) == 0 {
		return false
	}
	data, err := s.client.Get(ctx, keys[0])
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// writeCollection overwrites the object at key. The store offers no safe
// in-place replace, so existing objects at the key are deleted first and the
// new content written under the fixed name.
func (s *Store) writeCollection(ctx context.Context, key string, v any) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	keys, err := s.client.List(ctx, key)
	if err == nil {
		for _, k := range keys {
			if err := s.client.Remove(ctx, k); err != nil {
				return fmt.Errorf("clear %s: %w", k, err)
			}
		}
	}
	if err := s.client.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) users(ctx context.Context) []model.User {
	var us []model.User
	s.readCollection(ctx, usersKey, &us)
	return us
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	for _, u := range s.users(ctx) {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range s.users(ctx) {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, p store.CreateUserParams) (*model.User, error) {
	us := s.users(ctx)
	for _, u := range us {
		if u.Username == p.Username {
			return nil, fmt.Errorf("username %q already exists", p.Username)
		}
	}
	u := model.User{
		ID:       uuid.NewString(),
		Username: p.Username,
		Password: p.Password,
	}
	if err := s.writeCollection(ctx, usersKey, append(us, u)); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetSharedDocument(ctx context.Context) (*model.SharedDocument, error) {
	var d model.SharedDocument
	if !s.readCollection(ctx, documentKey, &d) || d.ID == "" {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *Store) UpdateSharedDocument(ctx context.Context, upd store.DocumentUpdate) (*model.SharedDocument, error) {
	cur, err := s.GetSharedDocument(ctx)
	if err != nil {
		p := store.DocumentParams{Language: model.DefaultLanguage}
		if upd.Content != nil {
			p.Content = *upd.Content
		}
		if upd.Language != nil {
			p.Language = *upd.Language
		}
		return s.CreateSharedDocument(ctx, p)
	}
	if upd.Content != nil {
		cur.Content = *upd.Content
	}
	if upd.Language != nil {
		cur.Language = *upd.Language
	}
	cur.UpdatedAt = time.Now().UTC()
	if err := s.writeCollection(ctx, documentKey, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (s *Store) CreateSharedDocument(ctx context.Context, p store.DocumentParams) (*model.SharedDocument, error) {
	if p.Language == "" {
		p.Language = model.DefaultLanguage
	}
	d := &model.SharedDocument{
		ID:        uuid.NewString(),
		Content:   p.Content,
		Language:  p.Language,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.writeCollection(ctx, documentKey, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) GetFileRecords(ctx context.Context) ([]model.FileRecord, error) {
	records := make([]model.FileRecord, 0)
	s.readCollection(ctx, filesKey, &records)
	return records, nil
}

func (s *Store) CreateFileRecord(ctx context.Context, p store.FileRecordParams) (*model.FileRecord, error) {
	records, _ := s.GetFileRecords(ctx)
	f := model.FileRecord{
		ID:         uuid.NewString(),
		Filename:   p.Filename,
		ObjectPath: p.ObjectPath,
		FileSize:   p.FileSize,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.writeCollection(ctx, filesKey, append(records, f)); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFileRecord reports true even when the id was not present: the read
// path may have served a default (empty) catalog, so a missing id here is
// indistinguishable from a swallowed read failure. Volatile and postgres
// backends report false for unknown ids; this asymmetry is part of the
// backend contract.
func (s *Store) DeleteFileRecord(ctx context.Context, id string) (bool, error) {
	records, _ := s.GetFileRecords(ctx)
	kept := make([]model.FileRecord, 0, len(records))
	for _, f := range records {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if err := s.writeCollection(ctx, filesKey, kept); err != nil {
		return false, err
	}
	return true, nil
}
