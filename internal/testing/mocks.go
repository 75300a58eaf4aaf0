package testing

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StoredObject is one object held by MockObjectStore
type StoredObject struct {
	Key         string
	ContentType string
	Body        []byte
}

// MockObjectStore is an in-memory bucket for backup tests
type MockObjectStore struct {
	mu      sync.RWMutex
	objects map[string]StoredObject
	err     error
}

// NewMockObjectStore creates an empty mock bucket
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{objects: make(map[string]StoredObject)}
}

// SetError makes every subsequent call fail with err
func (m *MockObjectStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Put stores an object directly, bypassing Upload
func (m *MockObjectStore) Put(key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = StoredObject{Key: key, Body: body}
}

// Upload reads body and stores it under key
func (m *MockObjectStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := m.failure(); err != nil {
		return err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("mock store: failed to read body: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = StoredObject{Key: key, ContentType: contentType, Body: data}
	return nil
}

// List returns objects under prefix in key order
func (m *MockObjectStore) List(ctx context.Context, prefix string) ([]types.Object, error) {
	if err := m.failure(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Object
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, types.Object{Key: aws.String(key), Size: aws.Int64(int64(len(obj.Body)))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return aws.ToString(out[i].Key) < aws.ToString(out[j].Key) })
	return out, nil
}

// Delete removes key
func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	if err := m.failure(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Keys returns the stored keys in order
func (m *MockObjectStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the object stored under key
func (m *MockObjectStore) Get(key string) (StoredObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

func (m *MockObjectStore) failure() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}
