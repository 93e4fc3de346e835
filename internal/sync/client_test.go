package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRemote(t *testing.T) {
	updated := time.Now().UTC().Truncate(time.Second)
	var lastPut map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/code", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(wireDocument{
				ID: "d1", Content: "hello", Language: "go", UpdatedAt: updated,
			})
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&lastPut))
			json.NewEncoder(w).Encode(wireDocument{
				ID: "d1", Content: lastPut["content"], Language: lastPut["language"], UpdatedAt: time.Now(),
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL + "/")
	ctx := context.Background()

	doc, err := remote.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Content)
	assert.Equal(t, "go", doc.Language)
	assert.True(t, doc.UpdatedAt.Equal(updated))

	pushed, err := remote.Push(ctx, "new content", "python")
	require.NoError(t, err)
	assert.Equal(t, "new content", pushed.Content)
	assert.Equal(t, map[string]string{"content": "new content", "language": "python"}, lastPut)
}

func TestHTTPRemote_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	remote := NewHTTPRemote(srv.URL)
	ctx := context.Background()

	_, err := remote.Fetch(ctx)
	assert.Error(t, err)

	_, err = remote.Push(ctx, "x", "text")
	assert.Error(t, err)
}
