package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPRemote speaks the /api/code endpoints of a snipdrop server.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

var _ Remote = (*HTTPRemote)(nil)

// NewHTTPRemote creates a remote for the server at baseURL.
func NewHTTPRemote(baseURL string) *HTTPRemote {
	return &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type wireDocument struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *HTTPRemote) Fetch(ctx context.Context) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/code", nil)
	if err != nil {
		return Document{}, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return Document{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetch document: status %d", resp.StatusCode)
	}
	var d wireDocument
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Document{}, err
	}
	return Document{Content: d.Content, Language: d.Language, UpdatedAt: d.UpdatedAt}, nil
}

func (r *HTTPRemote) Push(ctx context.Context, content, language string) (Document, error) {
	body, err := json.Marshal(map[string]string{
		"content":  content,
		"language": language,
	})
	if err != nil {
		return Document{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.baseURL+"/api/code", bytes.NewReader(body))
	if err != nil {
		return Document{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return Document{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("push document: status %d", resp.StatusCode)
	}
	var d wireDocument
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Document{}, err
	}
	return Document{Content: d.Content, Language: d.Language, UpdatedAt: d.UpdatedAt}, nil
}
