package blobs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/lookboard/internal/common"
	"github.com/google/uuid"
)

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte

	// UploadErr and DestroyErr, when set, are returned by the matching call.
	UploadErr  error
	DestroyErr error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://blobs"
	}
	return &MemoryStore{baseURL: strings.TrimRight(baseURL, "/"), objects: map[string][]byte{}}
}

func (s *MemoryStore) Upload(_ context.Context, data []byte, namespace string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	id := objectKey(namespace, uuid.NewString())
	s.objects[id] = append([]byte(nil), data...)
	return s.baseURL + "/" + id, nil
}

func (s *MemoryStore) Destroy(_ context.Context, objectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DestroyErr != nil {
		return s.DestroyErr
	}
	if _, ok := s.objects[objectID]; !ok {
		return fmt.Errorf("object %q: %w", objectID, common.ErrorNotFound)
	}
	delete(s.objects, objectID)
	return nil
}

// Has reports whether objectID is stored.
func (s *MemoryStore) Has(objectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectID]
	return ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Keys lists stored object ids in sorted order.
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
