// storage/memory.go - In-memory MediaStore for tests
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type object struct {
	data        []byte
	contentType string
}

// Memory keeps objects in a map. DeleteHook, when set, runs before each
// delete and can force a failure to exercise partial-cascade paths.
type Memory struct {
	mu         sync.RWMutex
	objects    map[string]object
	DeleteHook func(key string) error
}

func NewMemoryMedia() *Memory {
	return &Memory{objects: make(map[string]object)}
}

func (m *Memory) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[key] = object{data: buf, contentType: contentType}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if m.DeleteHook != nil {
		if err := m.DeleteHook(key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return fmt.Sprintf("https://media.local/%s?expires=%d", key, int64(ttl.Seconds())), nil
}

// Has reports whether an object exists, for test assertions.
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok
}

// Len reports the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
