// Package credentials stores a personal YouTube API key on disk.
//
// A stored key replaces the shared credential for CLI analyses, which lifts
// the daily fetch budget and the playlist size ceiling.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrKeyNotFound is returned by Load when no key has been saved.
var ErrKeyNotFound = errors.New("api key not found")

const fileName = "youtube_api_key.json"

type storedKey struct {
	APIKey  string    `json:"api_key"`
	SavedAt time.Time `json:"saved_at"`
}

// Store reads and writes the key file under a config directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the key file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

// Save writes key with owner-only permissions.
func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key must not be empty")
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(storedKey{APIKey: key, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal api key: %w", err)
	}
	return os.WriteFile(s.Path(), data, 0600)
}

// Load returns the saved key or ErrKeyNotFound.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read api key: %w", err)
	}

	var stored storedKey
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", fmt.Errorf("failed to unmarshal api key: %w", err)
	}
	if stored.APIKey == "" {
		return "", ErrKeyNotFound
	}
	return stored.APIKey, nil
}

// Clear removes the saved key. Clearing a missing key is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove api key: %w", err)
	}
	return nil
}

// Mask hides all but the first and last four characters of key.
func Mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
