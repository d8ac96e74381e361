package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Profile is a saved API key pair
type Profile struct {
	ID           string  `json:"-"`
	Label        string  `json:"label"`
	APIKey       string  `json:"api_key"`
	SecretAPIKey string  `json:"secret_api_key"`
	CreatedAt    string  `json:"created_at"`
	LastUsedAt   *string `json:"last_used_at"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

// fileLayout is the on-disk profiles.json structure. The layout is shared
// with earlier releases and user-editable, so key names must not change.
type fileLayout struct {
	ActiveProfile *string             `json:"active_profile"`
	Profiles      map[string]*Profile `json:"profiles"`
}

var idSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Store manages saved API profiles backed by a JSON file
type Store struct {
	mu         sync.Mutex
	dir        string
	path       string
	legacyPath string
	data       fileLayout
}

// NewStore opens (or creates) the profile store in the given directory.
// Profiles found in the legacy single-credential config.json or in
// PORKBUN_API_KEY / PORKBUN_SECRET_API_KEY are migrated into a default
// profile on first load.
func NewStore(dir string) (*Store, error) {
	s := &Store{
		dir:        dir,
		path:       filepath.Join(dir, "profiles.json"),
		legacyPath: filepath.Join(dir, "config.json"),
		data: fileLayout{
			Profiles: map[string]*Profile{},
		},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultDir returns the per-user profile directory (~/.porkbun_dns)
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".porkbun_dns"), nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err == nil {
		var loaded fileLayout
		if jsonErr := json.Unmarshal(data, &loaded); jsonErr == nil {
			s.data = loaded
		}
		// A corrupt file falls back to a clean structure
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read profiles: %w", err)
	}

	if s.data.Profiles == nil {
		s.data.Profiles = map[string]*Profile{}
	}
	if len(s.data.Profiles) == 0 {
		s.migrateLegacy()
	}

	// Persist the structure so users can edit it manually if needed
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

// migrateLegacy creates a default profile from the legacy config.json or
// environment variables
func (s *Store) migrateLegacy() {
	var apiKey, secretKey string

	if data, err := os.ReadFile(s.legacyPath); err == nil {
		var legacy map[string]string
		if json.Unmarshal(data, &legacy) == nil {
			apiKey = firstNonEmpty(legacy["api_key"], legacy["apikey"])
			secretKey = firstNonEmpty(legacy["secret_api_key"], legacy["secretapikey"])
		}
	}
	if apiKey == "" || secretKey == "" {
		apiKey = os.Getenv("PORKBUN_API_KEY")
		secretKey = os.Getenv("PORKBUN_SECRET_API_KEY")
	}
	if apiKey != "" && secretKey != "" {
		s.addLocked("default", apiKey, secretKey)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// List returns all profiles sorted by creation time, then label
func (s *Store) List() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Profile, 0, len(s.data.Profiles))
	for id, p := range s.data.Profiles {
		profile := *p
		profile.ID = id
		out = append(out, profile)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Get returns a profile by ID, or nil
func (s *Store) Get(id string) *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.Profiles[id]
	if !ok {
		return nil
	}
	profile := *p
	profile.ID = id
	return &profile
}

// Active returns the active profile, or nil when none is selected
func (s *Store) Active() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.ActiveProfile == nil {
		return nil
	}
	p, ok := s.data.Profiles[*s.data.ActiveProfile]
	if !ok {
		return nil
	}
	profile := *p
	profile.ID = *s.data.ActiveProfile
	return &profile
}

// SetActive selects the active profile and stamps its last-used time.
// An unknown or empty ID clears the selection.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.data.Profiles[id]; id != "" && ok {
		s.data.ActiveProfile = &id
		now := time.Now().Format(time.RFC3339)
		p.LastUsedAt = &now
	} else {
		s.data.ActiveProfile = nil
	}
	return s.save()
}

// Add creates a new profile and returns its ID. The first profile added
// becomes active automatically.
func (s *Store) Add(label, apiKey, secretAPIKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.addLocked(label, apiKey, secretAPIKey)
	if err := s.save(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) addLocked(label, apiKey, secretAPIKey string) string {
	id := s.generateID(label)
	s.data.Profiles[id] = &Profile{
		Label:        label,
		APIKey:       apiKey,
		SecretAPIKey: secretAPIKey,
		CreatedAt:    time.Now().Format(time.RFC3339),
	}
	if s.data.ActiveProfile == nil {
		s.data.ActiveProfile = &id
	}
	return id
}

// Update replaces a profile's label and credentials
func (s *Store) Update(id, label, apiKey, secretAPIKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.Profiles[id]
	if !ok {
		return fmt.Errorf("profile %q not found", id)
	}
	p.Label = label
	p.APIKey = apiKey
	p.SecretAPIKey = secretAPIKey
	p.UpdatedAt = time.Now().Format(time.RFC3339)
	return s.save()
}

// Delete removes a profile. If it was active, another profile (if any)
// becomes active.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.Profiles[id]; !ok {
		return fmt.Errorf("profile %q not found", id)
	}
	delete(s.data.Profiles, id)

	if s.data.ActiveProfile != nil && *s.data.ActiveProfile == id {
		s.data.ActiveProfile = nil
		for nextID := range s.data.Profiles {
			next := nextID
			s.data.ActiveProfile = &next
			break
		}
	}
	return s.save()
}

// generateID derives a stable, unique profile ID from the label
func (s *Store) generateID(label string) string {
	base := strings.Trim(idSanitizer.ReplaceAllString(strings.TrimSpace(label), "_"), "_")
	if base == "" {
		base = "profile"
	}
	base = strings.ToLower(base)

	for {
		candidate := fmt.Sprintf("%s_%s", base, uuid.NewString()[:6])
		if _, exists := s.data.Profiles[candidate]; !exists {
			return candidate
		}
	}
}
