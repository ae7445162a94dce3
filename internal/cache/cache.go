// Package cache persists JSON documents keyed by logical name.
//
// Documents are trusted indefinitely: there is no TTL and no invalidation.
// A cached file stays valid until somebody deletes it.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// RegionCatalogKey names the region catalog document, kept compatible
	// with existing bimas-daerah.json cache files.
	RegionCatalogKey = "bimas-daerah"

	fileExt = ".json"
)

// ErrNotFound is returned by Get when no document is stored under a key.
var ErrNotFound = errors.New("cache: not found")

// Cache stores raw JSON documents by key.
type Cache interface {
	Get(key string) ([]byte, error)
	Put(key string, doc []byte) error
}

// FileCache keeps one file per key in a directory.
type FileCache struct {
	dir string
}

// New creates a FileCache rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/jadwal-shalat/.
func New(dir string) (*FileCache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "jadwal-shalat")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &FileCache{dir: dir}, nil
}

// Dir returns the directory backing the cache.
func (c *FileCache) Dir() string {
	return c.dir
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+fileExt)
}

// Get reads the document stored under key.
func (c *FileCache) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return data, nil
}

// Put writes doc under key, replacing any previous document.
func (c *FileCache) Put(key string, doc []byte) error {
	if err := os.WriteFile(c.path(key), doc, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// MonthKey builds the key of one month of schedule data for a region.
// Names are lower-cased; path separators are replaced so the key is
// always a single file name.
func MonthKey(province, regency string, year, month int) string {
	raw := fmt.Sprintf("%s-%s-%04d-%02d", province, regency, year, month)
	return sanitize(strings.ToLower(raw))
}

var keyReplacer = strings.NewReplacer("/", "_", `\`, "_", "\x00", "_")

func sanitize(key string) string {
	return keyReplacer.Replace(key)
}

// PutJSON encodes v with two-space indentation and stores it under key.
func PutJSON(c Cache, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache document: %w", err)
	}
	return c.Put(key, data)
}

// Memory is an in-process Cache. It records how often it was used, which
// makes it convenient as a test double for the resolvers.
type Memory struct {
	docs map[string][]byte

	// PutErr, when set, is returned by every Put after the call is counted.
	// The document is not stored.
	PutErr error

	Gets int
	Puts int
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

// Get returns a copy of the document stored under key.
func (m *Memory) Get(key string) ([]byte, error) {
	m.Gets++
	doc, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(doc), nil
}

// Put stores a copy of doc under key.
func (m *Memory) Put(key string, doc []byte) error {
	m.Puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.docs[key] = bytes.Clone(doc)
	return nil
}

// Len reports how many documents are stored.
func (m *Memory) Len() int {
	return len(m.docs)
}
