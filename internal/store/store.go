// Package store implements the hierarchical key-value engine backing the
// taskdock API: namespace -> bucket -> key -> value. Each authenticated
// user owns one namespace; platform data lives in the reserved '_system'
// namespace. The namespace partition is the sole access-control boundary.
package store

import "errors"

var (
	// ErrNamespaceNotFound is returned when a requested namespace does not exist.
	ErrNamespaceNotFound = errors.New("namespace not found")
	// ErrBucketNotFound is returned when a requested bucket does not exist within a namespace.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrKeyNotFound is returned when a requested key does not exist within a bucket.
	ErrKeyNotFound = errors.New("key not found")
)

// SystemNamespace is the reserved ID for platform-level data (user accounts).
const SystemNamespace = "_system"

// Store is the contract between the API layer and the storage engine.
type Store interface {
	// Get retrieves a value for a specific namespace, bucket, and key.
	Get(namespace, bucket, key string) (any, error)
	// Set stores a value for a specific namespace, bucket, and key.
	Set(namespace, bucket, key string, val any) error
	// Merge applies a partial update to a map-valued record. The update is
	// atomic with respect to other store operations. Merging into a key
	// that does not exist is a silent no-op: no record is created.
	Merge(namespace, bucket, key string, fields map[string]any) error
	// Delete removes a key and its value. Deleting an absent key is not an error.
	Delete(namespace, bucket, key string) error

	// ListBucket returns all keys and values for a namespace and bucket.
	ListBucket(namespace, bucket string) (map[string]any, error)
	// Buckets returns all bucket IDs within a namespace.
	Buckets(namespace string) ([]string, error)
	// Namespaces returns all namespace IDs in the store.
	Namespaces() ([]string, error)
}
