package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"brewfinder/models"
)

// Store persists the user collection as a pretty-printed JSON array in a
// single file. Writes go through a temp file and an atomic rename so a crash
// mid-write cannot leave a truncated file behind. The mutex serializes
// read-modify-write cycles within this process; concurrent writers from
// other processes can still lose updates (known limitation).
type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	s := &Store{path: path}
	s.ensureFile()
	return s
}

func (s *Store) ensureFile() {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("Failed to create data directory %s: %v", dir, err)
		return
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := os.WriteFile(s.path, []byte("[]"), 0o644); err != nil {
			log.Printf("Failed to initialize users file %s: %v", s.path, err)
		}
	}
}

// Load returns all user records. A missing or corrupt file degrades to an
// empty slice rather than failing the caller.
func (s *Store) Load() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() []models.User {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to read users file: %v", err)
		}
		return []models.User{}
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		log.Printf("Failed to parse users file: %v", err)
		return []models.User{}
	}
	return users
}

func (s *Store) Save(users []models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(users)
}

func (s *Store) save(users []models.User) error {
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		log.Printf("Failed to encode users: %v", err)
		return fmt.Errorf("encoding users: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "users-*.json")
	if err != nil {
		log.Printf("Failed to write users file: %v", err)
		return fmt.Errorf("writing users file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		log.Printf("Failed to write users file: %v", err)
		return fmt.Errorf("writing users file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing users file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing users file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		log.Printf("Failed to replace users file: %v", err)
		return fmt.Errorf("replacing users file: %w", err)
	}
	return nil
}

// Append loads the current records, adds one, and persists the result as a
// single locked cycle.
func (s *Store) Append(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.load()
	return s.save(append(users, user))
}

// Update replaces the record whose ID matches. Updating a record that no
// longer exists is a no-op, matching last-login semantics.
func (s *Store) Update(updated models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.load()
	for i := range users {
		if users[i].ID == updated.ID {
			users[i] = updated
			break
		}
	}
	return s.save(users)
}
