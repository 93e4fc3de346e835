package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snipdrop/internal/model"
	"snipdrop/internal/store"
)

func strPtr(s string) *string { return &s }

func TestStore_Users(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, store.CreateUserParams{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.CreateUser(ctx, store.CreateUserParams{Username: "alice"})
	assert.Error(t, err, "duplicate username must be rejected")
}

func TestStore_UpdateSharedDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("lazy create defaults language to text", func(t *testing.T) {
		s := New()
		doc, err := s.UpdateSharedDocument(ctx, store.DocumentUpdate{Content: strPtr("a")})
		require.NoError(t, err)
		assert.Equal(t, "a", doc.Content)
		assert.Equal(t, model.DefaultLanguage, doc.Language)
	})

	t.Run("partial update preserves omitted fields", func(t *testing.T) {
		s := New()
		_, err := s.CreateSharedDocument(ctx, store.DocumentParams{Content: "x", Language: "go"})
		require.NoError(t, err)

		doc, err := s.UpdateSharedDocument(ctx, store.DocumentUpdate{Language: strPtr("python")})
		require.NoError(t, err)
		assert.Equal(t, "x", doc.Content)
		assert.Equal(t, "python", doc.Language)
	})

	t.Run("updated_at strictly increases", func(t *testing.T) {
		s := New()
		first, err := s.UpdateSharedDocument(ctx, store.DocumentUpdate{Content: strPtr("1")})
		require.NoError(t, err)
		second, err := s.UpdateSharedDocument(ctx, store.DocumentUpdate{Content: strPtr("2")})
		require.NoError(t, err)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	})

	t.Run("create replaces the singleton", func(t *testing.T) {
		s := New()
		_, err := s.CreateSharedDocument(ctx, store.DocumentParams{Content: "old"})
		require.NoError(t, err)
		_, err = s.CreateSharedDocument(ctx, store.DocumentParams{Content: "new"})
		require.NoError(t, err)

		doc, err := s.GetSharedDocument(ctx)
		require.NoError(t, err)
		assert.Equal(t, "new", doc.Content)
	})
}

func TestStore_FileRecords(t *testing.T) {
	s := New()
	ctx := context.Background()

	rec, err := s.CreateFileRecord(ctx, store.FileRecordParams{
		Filename:   "f.txt",
		ObjectPath: "/objects/f.txt",
		FileSize:   "10",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.UploadedAt.IsZero())

	records, err := s.GetFileRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)

	ok, err := s.DeleteFileRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	records, err = s.GetFileRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	ok, err = s.DeleteFileRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, ok, "deleting an unknown id reports false")
}
