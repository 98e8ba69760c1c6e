// storage/http_store.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPStore talks to the object store's REST API. Objects land under a single
// bucket; the service key never leaves the server.
type HTTPStore struct {
	BaseURL    string
	Bucket     string
	ServiceKey string
	Client     *http.Client
}

func NewHTTPStore(baseURL, bucket, serviceKey string) *HTTPStore {
	return &HTTPStore{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Bucket:     bucket,
		ServiceKey: serviceKey,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPStore) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	if s.BaseURL == "" {
		return "", ErrNotConfigured
	}
	if len(data) > MaxObjectSize {
		return "", ErrTooLarge
	}

	url := fmt.Sprintf("%s/object/%s/%s", s.BaseURL, s.Bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.ServiceKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("upload %s: status %d: %s", objectPath, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return s.PublicURL(objectPath), nil
}

// PublicURL resolves the stored object to the URL persisted on the Photo row.
func (s *HTTPStore) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.BaseURL, s.Bucket, objectPath)
}
