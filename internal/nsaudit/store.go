package nsaudit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Finding is a domain whose nameservers point outside Porkbun
type Finding struct {
	Domain      string   `json:"domain"`
	Nameservers []string `json:"nameservers"`
	// LiveNameservers is only set when DNS cross-checking is enabled
	LiveNameservers []string `json:"live_nameservers,omitempty"`
}

// Cache is the persisted audit state. The file layout is shared with
// earlier releases, so key names must not change.
type Cache struct {
	LastCheck         string    `json:"last_check"`
	ExternalNSDomains []Finding `json:"external_ns_domains"`
	CheckHistory      []any     `json:"check_history"`
}

// Store persists audit results as a single JSON file. Each completed audit
// overwrites the file wholesale; there is no incremental merge.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the cached audit state. A missing file yields an empty cache.
func (s *Store) Load() (*Cache, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Cache{ExternalNSDomains: []Finding{}, CheckHistory: []any{}}, nil
		}
		return nil, fmt.Errorf("failed to read audit cache: %w", err)
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("failed to parse audit cache: %w", err)
	}
	if cache.ExternalNSDomains == nil {
		cache.ExternalNSDomains = []Finding{}
	}
	if cache.CheckHistory == nil {
		cache.CheckHistory = []any{}
	}
	return &cache, nil
}

// Save overwrites the cache file with a fresh audit result
func (s *Store) Save(findings []Finding) error {
	if findings == nil {
		findings = []Finding{}
	}
	cache := Cache{
		LastCheck:         time.Now().Format(time.RFC3339),
		ExternalNSDomains: findings,
		CheckHistory:      []any{},
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audit cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write audit cache: %w", err)
	}
	return nil
}

// IsExternal reports whether a domain was flagged external in the cache
func (s *Store) IsExternal(domain string) (bool, error) {
	cache, err := s.Load()
	if err != nil {
		return false, err
	}
	for _, finding := range cache.ExternalNSDomains {
		if finding.Domain == domain {
			return true, nil
		}
	}
	return false, nil
}
