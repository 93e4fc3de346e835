package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"snipdrop/internal/model"
	"snipdrop/internal/store"
)

// Store is the volatile backend: everything lives in process memory and is
// lost on restart. It is the default when neither a database nor an object
// store is configured. A RWMutex guards the maps because fiber handles
// requests on multiple goroutines.
type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
	doc   *model.SharedDocument
	files map[string]*model.FileRecord
}

var _ store.Store = (*Store)(nil)

// New creates an empty volatile store.
func New() *Store {
	return &Store{
		users: make(map[string]*model.User),
		files: make(map[string]*model.FileRecord),
	}
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateUser(ctx context.Context, p store.CreateUserParams) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == p.Username {
			return nil, fmt.Errorf("username %q already exists", p.Username)
		}
	}
	u := &model.User{
		ID:       uuid.NewString(),
		Username: p.Username,
		Password: p.Password,
	}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *Store) GetSharedDocument(ctx context.Context) (*model.SharedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, store.ErrNotFound
	}
	cp := *s.doc
	return &cp, nil
}

func (s *Store) UpdateSharedDocument(ctx context.Context, upd store.DocumentUpdate) (*model.SharedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		p := store.DocumentParams{Language: model.DefaultLanguage}
		if upd.Content != nil {
			p.Content = *upd.Content
		}
		if upd.Language != nil {
			p.Language = *upd.Language
		}
		return s.createLocked(p), nil
	}
	if upd.Content != nil {
		s.doc.Content = *upd.Content
	}
	if upd.Language != nil {
		s.doc.Language = *upd.Language
	}
	s.doc.UpdatedAt = s.nextStamp()
	cp := *s.doc
	return &cp, nil
}

func (s *Store) CreateSharedDocument(ctx context.Context, p store.DocumentParams) (*model.SharedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.createLocked(p)
	return &cp, nil
}

// createLocked replaces the singleton. Caller holds the write lock.
func (s *Store) createLocked(p store.DocumentParams) *model.SharedDocument {
	if p.Language == "" {
		p.Language = model.DefaultLanguage
	}
	s.doc = &model.SharedDocument{
		ID:        uuid.NewString(),
		Content:   p.Content,
		Language:  p.Language,
		UpdatedAt: s.nextStamp(),
	}
	return s.doc
}

// nextStamp returns a timestamp strictly after the current document's
// UpdatedAt, even when the wall clock has not advanced between updates.
func (s *Store) nextStamp() time.Time {
	t := time.Now().UTC()
	if s.doc != nil && !t.After(s.doc.UpdatedAt) {
		t = s.doc.UpdatedAt.Add(time.Nanosecond)
	}
	return t
}

func (s *Store) GetFileRecords(ctx context.Context) ([]model.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FileRecord, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, *f)
	}
	// Newest first; id breaks ties so the order is stable across reads.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) CreateFileRecord(ctx context.Context, p store.FileRecordParams) (*model.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &model.FileRecord{
		ID:         uuid.NewString(),
		Filename:   p.Filename,
		ObjectPath: p.ObjectPath,
		FileSize:   p.FileSize,
		UploadedAt: time.Now().UTC(),
	}
	s.files[f.ID] = f
	cp := *f
	return &cp, nil
}

func (s *Store) DeleteFileRecord(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return false, nil
	}
	delete(s.files, id)
	return true, nil
}
