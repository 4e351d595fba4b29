package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

type memObject struct {
	data []byte
	info Info
}

type memoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

func NewMemory() Store {
	return &memoryStore{objects: make(map[string]memObject), now: time.Now}
}

func (m *memoryStore) Driver() Driver { return DriverMemory }

func (m *memoryStore) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	if !validKey(key) {
		return Info{}, ErrInvalidKey
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.objects[key]; exists {
		return Info{}, ErrExists
	}
	info := Info{Key: key, Size: int64(len(data)), ContentType: opts.ContentType, LastModified: m.now().UTC()}
	m.objects[key] = memObject{data: data, info: info}
	return info, nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return Info{}, nil, ErrNotFound
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *memoryStore) Delete(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return false, nil
	}
	delete(m.objects, key)
	return true, nil
}
