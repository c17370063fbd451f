package storage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows PUT requests
	// for uploading an object directly to the storage provider.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading/viewing an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// MemoryStorage hands out URLs under a fixed base and remembers which keys were
// presigned and deleted. Used with the in-memory database driver and in tests.
type MemoryStorage struct {
	mu        sync.Mutex
	baseURL   string
	presigned map[string]bool
	deleted   []string
}

// NewMemoryStorage creates a MemoryStorage whose URLs start with baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{baseURL: baseURL, presigned: make(map[string]bool)}
}

func (m *MemoryStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presigned[objectKey] = true
	return m.url("PUT", objectKey, expires), nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return m.url("GET", objectKey, expires), nil
}

func (m *MemoryStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.presigned, objectKey)
	m.deleted = append(m.deleted, objectKey)
	return nil
}

// Deleted returns the keys passed to DeleteObject, sorted.
func (m *MemoryStorage) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.deleted...)
	sort.Strings(out)
	return out
}

func (m *MemoryStorage) url(method, objectKey string, expires time.Duration) string {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	return fmt.Sprintf("%s/%s?method=%s&expires=%d", m.baseURL, url.PathEscape(objectKey), method, int64(expires.Seconds()))
}
