package service

import (
	"context"
	"errors"

	"snipdrop/internal/model"
	"snipdrop/internal/store"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyUpdate  = errors.New("update contains no fields")
	ErrBlobDisabled = errors.New("object store not configured")
)

// SnippetService exposes the shared document use cases.
type SnippetService interface {
	// Get returns the shared document, creating the empty default on first
	// read.
	Get(ctx context.Context) (*model.SharedDocument, error)
	// Update applies a partial update and returns the merged document.
	Update(ctx context.Context, upd store.DocumentUpdate) (*model.SharedDocument, error)
}

type snippetService struct {
	store store.Store
}

// NewSnippetService constructs a SnippetService on top of the active backend.
func NewSnippetService(st store.Store) SnippetService {
	return &snippetService{store: st}
}

func (s *snippetService) Get(ctx context.Context) (*model.SharedDocument, error) {
	doc, err := s.store.GetSharedDocument(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return s.store.CreateSharedDocument(ctx, store.DocumentParams{
			Content:  "",
			Language: model.DefaultLanguage,
		})
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *snippetService) Update(ctx context.Context, upd store.DocumentUpdate) (*model.SharedDocument, error) {
	if upd.Content == nil && upd.Language == nil {
		return nil, ErrEmptyUpdate
	}
	return s.store.UpdateSharedDocument(ctx, upd)
}
