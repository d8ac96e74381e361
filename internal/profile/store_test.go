package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestAddAndActivate(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	id1, err := store.Add("Work Account", "pk1", "sk1")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// First profile becomes active automatically
	active := store.Active()
	if active == nil || active.ID != id1 {
		t.Fatalf("Active() = %+v; want profile %s", active, id1)
	}

	id2, err := store.Add("Personal", "pk2", "sk2")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if store.Active().ID != id1 {
		t.Error("adding a second profile must not steal the active slot")
	}

	if err := store.SetActive(id2); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	active = store.Active()
	if active.ID != id2 {
		t.Errorf("Active() = %s; want %s", active.ID, id2)
	}
	if active.LastUsedAt == nil {
		t.Error("activation should stamp last_used_at")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	id, err := store.Add("Main", "pk_key", "sk_secret")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// Reopen from disk
	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() reopen error = %v", err)
	}
	p := reopened.Get(id)
	if p == nil {
		t.Fatalf("profile %s lost after reload", id)
	}
	if p.Label != "Main" || p.APIKey != "pk_key" || p.SecretAPIKey != "sk_secret" {
		t.Errorf("reloaded profile mismatch: %+v", p)
	}
	if reopened.Active() == nil || reopened.Active().ID != id {
		t.Error("active profile lost after reload")
	}

	// On-disk layout keys are fixed
	raw, err := os.ReadFile(filepath.Join(dir, "profiles.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var onDisk map[string]json.RawMessage
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("profiles.json is invalid: %v", err)
	}
	for _, key := range []string{"active_profile", "profiles"} {
		if _, ok := onDisk[key]; !ok {
			t.Errorf("profiles.json missing key %q", key)
		}
	}
}

func TestDeletepromotesNextProfile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	id1, _ := store.Add("One", "pk1", "sk1")
	id2, _ := store.Add("Two", "pk2", "sk2")

	if err := store.Delete(id1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Get(id1) != nil {
		t.Error("deleted profile still present")
	}
	active := store.Active()
	if active == nil || active.ID != id2 {
		t.Errorf("remaining profile should become active, got %+v", active)
	}

	if err := store.Delete(id2); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Active() != nil {
		t.Error("empty store should have no active profile")
	}

	if err := store.Delete("missing"); err == nil {
		t.Error("deleting an unknown profile should fail")
	}
}

func TestLegacyMigration(t *testing.T) {
	dir := t.TempDir()
	legacy := map[string]string{"api_key": "pk_legacy", "secret_api_key": "sk_legacy"}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
		t.Fatalf("failed to seed legacy config: %v", err)
	}

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	profiles := store.List()
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles; want 1 migrated", len(profiles))
	}
	if profiles[0].APIKey != "pk_legacy" || profiles[0].SecretAPIKey != "sk_legacy" {
		t.Errorf("migrated credentials mismatch: %+v", profiles[0])
	}
	if store.Active() == nil {
		t.Error("migrated profile should be active")
	}
}

func TestCorruptFileFallsBackClean(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "profiles.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to seed corrupt file: %v", err)
	}

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() should tolerate a corrupt file, got %v", err)
	}
	if len(store.List()) != 0 {
		t.Error("corrupt file should yield an empty store")
	}
}

func TestListOrdering(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	store.Add("bravo", "pk", "sk")
	store.Add("alpha", "pk", "sk")

	profiles := store.List()
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles; want 2", len(profiles))
	}
	// Same-second creation falls back to label ordering
	if profiles[0].CreatedAt == profiles[1].CreatedAt && profiles[0].Label > profiles[1].Label {
		t.Errorf("profiles not sorted: %q before %q", profiles[0].Label, profiles[1].Label)
	}
}
