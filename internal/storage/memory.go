package storage

import (
	"context"
	"sync"
)

// MemoryImageStore keeps images in process. It backs development setups
// without a bucket and the handler tests.
type MemoryImageStore struct {
	mu      sync.RWMutex
	objects map[string]*Image
	BaseURL string
}

func NewMemoryImageStore(baseURL string) *MemoryImageStore {
	return &MemoryImageStore{objects: make(map[string]*Image), BaseURL: baseURL}
}

func (m *MemoryImageStore) Save(_ context.Context, img *Image) (string, error) {
	key := newKey(img.Extension)
	m.mu.Lock()
	m.objects[key] = img
	m.mu.Unlock()
	return key, nil
}

func (m *MemoryImageStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryImageStore) URL(_ context.Context, key string) (string, error) {
	return m.BaseURL + "/" + key, nil
}

// Get returns a stored image, if present.
func (m *MemoryImageStore) Get(key string) (*Image, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.objects[key]
	return img, ok
}
