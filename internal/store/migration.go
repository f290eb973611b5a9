package store

import "fmt"

// Migrate copies every record from a source store into a destination store.
// Used by the daemon's one-shot import path to pull a legacy data directory
// into the live store.
func Migrate(src Store, dst Store) error {
	namespaces, err := src.Namespaces()
	if err != nil {
		return fmt.Errorf("failed to list namespaces: %w", err)
	}

	for _, ns := range namespaces {
		buckets, err := src.Buckets(ns)
		if err != nil {
			return fmt.Errorf("failed to list buckets for namespace %s: %w", ns, err)
		}

		for _, b := range buckets {
			data, err := src.ListBucket(ns, b)
			if err != nil {
				return fmt.Errorf("failed to dump bucket %s: %w", b, err)
			}

			for k, v := range data {
				if err := dst.Set(ns, b, k, v); err != nil {
					return fmt.Errorf("failed to set key %s in destination: %w", k, err)
				}
			}
		}
	}

	return nil
}
