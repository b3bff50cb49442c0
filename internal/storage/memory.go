package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory BlobStore used by tests and local development
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
	baseURL string
	gets    int

	// Now is swappable so tests can age objects
	Now func() time.Time

	// FailPut, when set, makes every Put return this error
	FailPut error
}

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memObject),
		baseURL: "https://storage.local",
		Now:     time.Now,
	}
}

func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if m.FailPut != nil {
		return m.FailPut
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.objects[key] = memObject{data: cp, contentType: contentType, modified: m.Now()}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, nil
}

func (m *MemoryStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &ObjectInfo{Key: key, Size: int64(len(obj.data)), LastModified: obj.modified}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(m.baseURL, "/"), key)
}

// SetModified backdates an object, for TTL tests
func (m *MemoryStore) SetModified(key string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if obj, ok := m.objects[key]; ok {
		obj.modified = at
		m.objects[key] = obj
	}
}

// Len returns the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// GetCalls reports how many times Get was called, for tests that assert a
// body was never downloaded
func (m *MemoryStore) GetCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}

// ObjectContentType returns the content type an object was stored with,
// or "" when the key is absent
func (m *MemoryStore) ObjectContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key].contentType
}

var _ BlobStore = (*MemoryStore)(nil)
