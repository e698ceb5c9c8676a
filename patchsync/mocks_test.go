package patchsync

import (
	"context"
	"sync"
)

// mockStore is an ObjectStore backed by a map. The Func fields override the
// map behavior when set.
type mockStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	calls   []string

	ListFunc   func(ctx context.Context, prefix string) ([]string, error)
	PutFunc    func(ctx context.Context, key string, data []byte) error
	GetFunc    func(ctx context.Context, key string) ([]byte, error)
	DeleteFunc func(ctx context.Context, key string) error
}

func newMockStore() *mockStore {
	return &mockStore{objects: make(map[string][]byte)}
}

func (m *mockStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

func (m *mockStore) List(ctx context.Context, prefix string) ([]string, error) {
	m.record("List")
	if m.ListFunc != nil {
		return m.ListFunc(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *mockStore) Put(ctx context.Context, key string, data []byte) error {
	m.record("Put " + key)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.record("Get " + key)
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[key], nil
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	m.record("Delete " + key)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *mockStore) factory() StoreFactory {
	return func(Config) (ObjectStore, error) { return m, nil }
}

type builderFunc func(ctx context.Context, repoRoot, patchName string, selection []string) (string, error)

func (f builderFunc) BuildPatch(ctx context.Context, repoRoot, patchName string, selection []string) (string, error) {
	return f(ctx, repoRoot, patchName, selection)
}

type applierFunc func(ctx context.Context, patchFilePath, repoRoot string) error

func (f applierFunc) Apply(ctx context.Context, patchFilePath, repoRoot string) error {
	return f(ctx, patchFilePath, repoRoot)
}

type listerFunc func(ctx context.Context, repoRoot string) ([]string, error)

func (f listerFunc) ChangedPaths(ctx context.Context, repoRoot string) ([]string, error) {
	return f(ctx, repoRoot)
}
