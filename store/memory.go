package store

import (
	"context"
	"errors"
	"sync"
)

// Memory is an in-process Store used in tests and local development.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailOps, when non-nil, makes the named operations return a backend
	// error so handler error paths can be exercised.
	FailOps map[string]error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) fail(op, key string) error {
	if err, ok := m.FailOps[op]; ok {
		return &StorageError{Op: op, Key: key, Err: err}
	}
	return nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := m.fail("put", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; ok {
		return ErrDuplicateKey
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = cp
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.fail("exists", key); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *Memory) GetString(ctx context.Context, key string) (string, error) {
	if err := m.fail("get", key); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return "", &StorageError{Op: "get", Key: key, Err: errors.New("not found")}
	}
	return string(data), nil
}
