package store

import (
	"sync"
)

// MemStore is the thread-safe in-memory engine.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [namespace][bucket][key]value
	data      map[string]map[string]map[string]any
	persister *Persistence
	wg        sync.WaitGroup
}

// NewMemStore initializes a store.
// It accepts existing data (from LoadAll) and an optional persister.
func NewMemStore(initialData map[string]map[string]map[string]any, p *Persistence) *MemStore {
	if initialData == nil {
		initialData = make(map[string]map[string]map[string]any)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
	}
}

// Wait blocks until all background persistence tasks have completed.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

func (m *MemStore) Get(namespace, bucket, key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ns, ok := m.data[namespace]
	if !ok {
		return nil, ErrNamespaceNotFound
	}

	b, ok := ns[bucket]
	if !ok {
		return nil, ErrBucketNotFound
	}

	val, ok := b[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return val, nil
}

func (m *MemStore) Set(namespace, bucket, key string, val any) error {
	m.mu.Lock()
	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]map[string]any)
	}
	if m.data[namespace][bucket] == nil {
		m.data[namespace][bucket] = make(map[string]any)
	}

	m.data[namespace][bucket][key] = val

	snapshot := m.copyNamespace(namespace)
	m.mu.Unlock()

	m.persist(namespace, snapshot)
	return nil
}

func (m *MemStore) Merge(namespace, bucket, key string, fields map[string]any) error {
	m.mu.Lock()

	rec, ok := m.record(namespace, bucket, key)
	if !ok {
		// Absent records are left absent.
		m.mu.Unlock()
		return nil
	}

	// Install a fresh map rather than mutating rec in place: earlier
	// snapshots handed to the background persister still alias the old
	// record, so it must stay immutable once stored.
	updated := make(map[string]any, len(rec)+len(fields))
	for k, v := range rec {
		updated[k] = v
	}
	for k, v := range fields {
		updated[k] = v
	}
	m.data[namespace][bucket][key] = updated

	snapshot := m.copyNamespace(namespace)
	m.mu.Unlock()

	m.persist(namespace, snapshot)
	return nil
}

// record returns the map form of a stored value. Values persisted to disk
// round-trip through JSON as map[string]any; in-process writers are expected
// to store the same shape. Must be called while holding m.mu.
func (m *MemStore) record(namespace, bucket, key string) (map[string]any, bool) {
	ns, ok := m.data[namespace]
	if !ok {
		return nil, false
	}
	b, ok := ns[bucket]
	if !ok {
		return nil, false
	}
	val, ok := b[key]
	if !ok {
		return nil, false
	}
	rec, ok := val.(map[string]any)
	return rec, ok
}

func (m *MemStore) Delete(namespace, bucket, key string) error {
	m.mu.Lock()
	if ns, ok := m.data[namespace]; ok {
		if b, ok := ns[bucket]; ok {
			delete(b, key)
		}
	}
	snapshot := m.copyNamespace(namespace)
	m.mu.Unlock()

	m.persist(namespace, snapshot)
	return nil
}

// persist saves a namespace snapshot in the background.
func (m *MemStore) persist(namespace string, snapshot map[string]map[string]any) {
	if m.persister == nil || snapshot == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.persister.SaveNamespace(namespace, snapshot)
	}()
}

// copyNamespace creates a deep copy of a namespace's data so it can be
// saved safely off-lock. MUST be called while holding m.mu.
func (m *MemStore) copyNamespace(namespace string) map[string]map[string]any {
	original, ok := m.data[namespace]
	if !ok {
		return nil
	}

	nsCopy := make(map[string]map[string]any)
	for bucket, bucketData := range original {
		bCopy := make(map[string]any)
		for k, v := range bucketData {
			bCopy[k] = v
		}
		nsCopy[bucket] = bCopy
	}
	return nsCopy
}

func (m *MemStore) ListBucket(namespace, bucket string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ns, ok := m.data[namespace]; ok {
		if b, ok := ns[bucket]; ok {
			// Return a copy to prevent external mutation of the internal map
			out := make(map[string]any)
			for k, v := range b {
				out[k] = v
			}
			return out, nil
		}
	}
	return nil, ErrBucketNotFound
}

func (m *MemStore) Buckets(namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []string
	if buckets, ok := m.data[namespace]; ok {
		for id := range buckets {
			list = append(list, id)
		}
	}
	return list, nil
}

func (m *MemStore) Namespaces() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []string
	for id := range m.data {
		list = append(list, id)
	}
	return list, nil
}
