// Package config persists sift's per-profile settings — the fields in
// model.PersistentConfig — in a local embedded key/value store, and hosts
// the incremental-scan watermark state machine (spec.md §4.7).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/bvinton/sift/internal/model"
)

const bucketName = "sift"

// DefaultProfile is the profile name used when the user doesn't select one
// with -c.
const DefaultProfile = "Default"

// Store is a bbolt-backed key/value store of PersistentConfig, keyed by
// profile name. Repurposed from the hash-dedup cache's read/write database
// split into a single always-read-write database: sift's settings file is
// opened and held for the lifetime of one invocation, not swapped per-run.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the settings database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("config: create settings dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("config: open settings db (locked by another instance?): %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("config: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// ErrNotFound is returned by Load when no config is stored for a profile.
var ErrNotFound = errors.New("config: profile not found")

// Load reads the PersistentConfig for profile.
func (s *Store) Load(profile string) (*model.PersistentConfig, error) {
	var cfg model.PersistentConfig
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		data := b.Get([]byte(profile))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("config: load profile %q: %w", profile, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &cfg, nil
}

// Save writes cfg for profile, replacing any prior value.
func (s *Store) Save(profile string, cfg *model.PersistentConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal profile %q: %w", profile, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Put([]byte(profile), data)
	})
	if err != nil {
		return fmt.Errorf("config: save profile %q: %w", profile, err)
	}
	return nil
}

// Reset deletes the stored config for profile — the only way to forget a
// stored password (spec.md §6, the -q flag).
func (s *Store) Reset(profile string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.Delete([]byte(profile))
	})
	if err != nil {
		return fmt.Errorf("config: reset profile %q: %w", profile, err)
	}
	return nil
}

// DefaultPath returns the settings database path under the user's config
// directory: {os.UserConfigDir()}/sift/settings.db.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "sift", "settings.db"), nil
}
