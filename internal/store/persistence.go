package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/taskdock-dev/taskdock/internal/vault"
)

// Persistence handles the disk I/O for the MemStore. Each namespace is
// written to its own JSON file. When a data key is set, files are
// AES-GCM encrypted at rest.
type Persistence struct {
	DataDir string
	dataKey []byte     // nil means plaintext files
	mu      sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	// Ensure the data directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir}, nil
}

// NewEncryptedPersistence initializes a persistence handler that encrypts
// namespace files with the given 32-byte key.
func NewEncryptedPersistence(dir string, dataKey []byte) (*Persistence, error) {
	if len(dataKey) != 32 {
		return nil, fmt.Errorf("data key must be 32 bytes, got %d", len(dataKey))
	}
	p, err := NewPersistence(dir)
	if err != nil {
		return nil, err
	}
	p.dataKey = dataKey
	return p, nil
}

// SaveNamespace writes a single namespace's data to disk atomically.
func (p *Persistence) SaveNamespace(namespace string, data map[string]map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := filepath.Join(p.DataDir, fmt.Sprintf("%s.json", namespace))
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if p.dataKey != nil {
		sealed, err := vault.Encrypt(string(bytes), p.dataKey)
		if err != nil {
			return err
		}
		bytes = []byte(sealed)
	}

	// Write to a temporary file, then rename into place. A crash leaves
	// either the old file or the new one, never a half-written one.
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, filePath)
}

// LoadAll returns all namespace data found in the data directory.
func (p *Persistence) LoadAll() (map[string]map[string]map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	allData := make(map[string]map[string]map[string]any)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		namespace := file.Name()[:len(file.Name())-5] // Strip .json

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			log.Printf("Warning: Could not read namespace file %s: %v", file.Name(), err)
			continue // Skip corrupted/unreadable files
		}

		if p.dataKey != nil {
			plain, err := vault.Decrypt(string(content), p.dataKey)
			if err != nil {
				log.Printf("Warning: Could not decrypt namespace file %s: %v", file.Name(), err)
				continue
			}
			content = []byte(plain)
		}

		var nsData map[string]map[string]any
		if err := json.Unmarshal(content, &nsData); err != nil {
			log.Printf("Warning: Could not unmarshal namespace data from %s: %v", file.Name(), err)
			continue
		}
		allData[namespace] = nsData
	}
	return allData, nil
}
