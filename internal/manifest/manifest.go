package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Version is the current manifest schema version.
const Version = 1

// Entry records the sync state of one document.
type Entry struct {
	URL          string `json:"url"`
	LastMod      string `json:"lastmod,omitempty"`
	LocalPath    string `json:"local_path"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	LastSyncTime string `json:"last_sync_time,omitempty"`
}

// Meta carries run-level bookkeeping.
type Meta struct {
	LastSyncTime string `json:"last_sync_time,omitempty"`
	LastURLCount int    `json:"last_url_count,omitempty"`
}

// Manifest is the persisted sync state for one mirror. Entries are keyed
// by page URL.
type Manifest struct {
	Version int              `json:"version"`
	Meta    Meta             `json:"meta"`
	Entries map[string]Entry `json:"entries"`
}

// New returns an empty manifest at the current version.
func New() *Manifest {
	return &Manifest{
		Version: Version,
		Entries: make(map[string]Entry),
	}
}

// Load reads the manifest at path. A missing file yields an empty
// manifest; a file that exists but cannot be parsed yields ErrCorrupted.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrCorrupted, path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrCorrupted, path, err)
	}

	if m.Version == 0 {
		m.Version = Version
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}

	return &m, nil
}

// Get returns the entry for url, if any.
func (m *Manifest) Get(url string) (Entry, bool) {
	e, ok := m.Entries[url]
	return e, ok
}

// Set stores an entry, replacing any existing one for the same URL.
func (m *Manifest) Set(e Entry) error {
	if e.URL == "" {
		return ErrMissingURL
	}
	m.Entries[e.URL] = e
	return nil
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// Save writes the manifest to path atomically: marshal to a temporary
// sibling, then rename into place.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit manifest: %w", err)
	}

	return nil
}
