package storage

import (
	"context"
	"strings"
	"sync"

	profileapp "github.com/invoicer/backend/internal/application/profile"
)

var _ profileapp.ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage keeps objects in memory. It backs local development when
// no S3 endpoint is configured.
type StubObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// StoredObject is an object held by the stub
type StoredObject struct {
	ContentType string
	Data        []byte
}

// NewStubObjectStorage creates a stub. An empty baseURL defaults to
// https://storage.example.com.
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "https://storage.example.com"
	}
	return &StubObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]StoredObject),
	}
}

func (s *StubObjectStorage) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[key] = StoredObject{ContentType: contentType, Data: buf}
	s.mu.Unlock()

	return s.BaseURL + "/" + key, nil
}

func (s *StubObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Get returns the stored object, if any
func (s *StubObjectStorage) Get(key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}
